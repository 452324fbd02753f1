package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/lintgate/internal/attest"
	"github.com/felixgeelhaar/lintgate/internal/errors"
)

var attestCmd = &cobra.Command{
	Use:   "attest <report.json>",
	Short: "Sign a machine report",
	Long: `attest signs a json report with a PEM-encoded ECDSA key or an OpenSSH
private key and writes a detached attestation next to it. The
attestation binds the report digest and the signing time.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttest,
}

var verifyCmd = &cobra.Command{
	Use:   "verify <report.json>",
	Short: "Verify a report against its attestation",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

var (
	attestKey    string
	attestOutput string
	verifyAtt    string
)

func init() {
	rootCmd.AddCommand(attestCmd)
	rootCmd.AddCommand(verifyCmd)

	attestCmd.Flags().StringVarP(&attestKey, "key", "k", "", "private key file (PEM ECDSA or OpenSSH)")
	attestCmd.Flags().StringVarP(&attestOutput, "output", "o", "", "attestation file (default: <report>.att)")
	_ = attestCmd.MarkFlagRequired("key")

	verifyCmd.Flags().StringVarP(&verifyAtt, "attestation", "a", "", "attestation file (default: <report>.att)")
}

func runAttest(cmd *cobra.Command, args []string) error {
	reportPath := args[0]
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to open %s", reportPath), err)
	}

	signer := attest.NewSigner(attestKey)
	att, err := signer.Sign(data, reportPath)
	if err != nil {
		return err
	}

	output := attestOutput
	if output == "" {
		output = reportPath + ".att"
	}
	if err := attest.Save(output, att); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed %s (%s)\n", reportPath, att.Algorithm)
	fmt.Fprintf(cmd.OutOrStdout(), "  Attestation written to %s\n", output)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	reportPath := args[0]
	data, err := os.ReadFile(reportPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to open %s", reportPath), err)
	}

	attPath := verifyAtt
	if attPath == "" {
		attPath = reportPath + ".att"
	}
	att, err := attest.Load(attPath)
	if err != nil {
		return err
	}

	if err := attest.Verify(data, att); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s matches its attestation\n", reportPath)
	fmt.Fprintf(cmd.OutOrStdout(), "  Algorithm: %s\n", att.Algorithm)
	if att.KeyFingerprint != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  Key:       %s\n", att.KeyFingerprint)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Signed at: %s\n", att.SignedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
