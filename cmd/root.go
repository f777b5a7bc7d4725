// Package cmd is for command line interactions with the plinkstr application
package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pladd04/TRTools/internal/strassoc"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "plinkstr",
	Short: "Test STRs and SNPs for association with a phenotype",
	Run:   strassoc.AssocCmd,
	Long: `Perform per-variant association tests between the genotypes in a VCF
and a case/control phenotype, optionally adjusting for covariates.

Each variant is classified as a SNP or an STR, its genotypes are encoded
per sample, and a regression of phenotype on genotype (plus covariates)
is run. One summary row is written per test. For STRs, additional
bi-allelic sub-tests can be run per alternate allele and per distinct
alternate allele length.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	strassoc.RegisterFlags(RootCmd)
}
