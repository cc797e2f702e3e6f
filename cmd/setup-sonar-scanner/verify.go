package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ochairo/setup-sonar-scanner/internal/domain-adapters/gateways"
	"github.com/ochairo/setup-sonar-scanner/internal/domain/services"
)

func newVerifyCmd() *cobra.Command {
	var (
		sha256  string
		sigPath string
		keyFile string
		keyIDs  []string
	)

	cmd := &cobra.Command{
		Use:   "verify <archive>",
		Short: "Verify a downloaded scanner archive against a checksum and/or detached signature",
		Example: `  # Verify checksum
  setup-sonar-scanner verify sonar-scanner-cli-4.8.0.2856.zip --sha256 <hex>

  # Verify GPG signature with the SonarSource key from a keyserver
  setup-sonar-scanner verify sonar-scanner-cli-4.8.0.2856.zip --sig sonar-scanner-cli-4.8.0.2856.zip.asc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			filePath := args[0]

			if sha256 == "" && sigPath == "" {
				return errors.New("no verification checks requested (specify --sha256 or --sig)")
			}

			fmt.Fprintf(out, "🔍 Verifying %s\n\n", filepath.Base(filePath))
			verified, failed := 0, 0

			if sha256 != "" {
				fmt.Fprintf(out, "📋 Verifying checksum...\n")
				if err := gateways.NewChecksumVerifier().VerifyChecksum(ctx, filePath, sha256); err != nil {
					fmt.Fprintf(out, "❌ Checksum verification FAILED: %v\n\n", err)
					failed++
				} else {
					fmt.Fprintf(out, "✅ Checksum verified\n\n")
					verified++
				}
			}

			if sigPath != "" {
				fmt.Fprintf(out, "🔐 Verifying GPG signature...\n")
				gpgVerifier := gateways.NewGPGVerifier()
				var err error
				if keyFile != "" {
					err = gpgVerifier.ImportGPGKeyFromFile(keyFile)
				} else {
					err = gpgVerifier.ImportGPGKeys(ctx, keyIDs)
				}
				if err == nil {
					fmt.Fprintf(out, "   %d key(s) loaded\n", gpgVerifier.GetKeyringSize())
					err = gpgVerifier.VerifyGPGSignatureFile(filePath, sigPath)
				}
				if err != nil {
					fmt.Fprintf(out, "❌ GPG signature verification FAILED: %v\n\n", err)
					failed++
				} else {
					fmt.Fprintf(out, "✅ GPG signature verified\n\n")
					verified++
				}
			}

			fmt.Fprintf(out, "✅ Verified: %d checks\n", verified)
			if failed > 0 {
				fmt.Fprintf(out, "❌ Failed: %d checks\n", failed)
				return fmt.Errorf("%d verification checks failed", failed)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sha256, "sha256", "", "expected SHA-256 of the archive")
	flags.StringVar(&sigPath, "sig", "", "detached GPG signature file (.asc)")
	flags.StringVar(&keyFile, "key-file", "", "armored or binary public key file; skips the keyserver lookup")
	flags.StringSliceVar(&keyIDs, "key-id", []string{services.SonarSourceFingerprint}, "key fingerprints to fetch from keyservers")
	return cmd
}
