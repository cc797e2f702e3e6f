package entities

// Distribution describes where an upstream tool is published and where it is installed
type Distribution struct {
	Name               string
	BaseURL            string
	ArtifactName       string
	ExtractedDirPrefix string
	ArchiveExtension   string
	RuntimeSuffixes    map[Platform]string
	InstallPaths       map[Platform]string
	Signature          DistributionSignature
}

// DistributionSignature describes the detached signatures published next to each archive
type DistributionSignature struct {
	Extension       string
	KeyFingerprints []string
}
