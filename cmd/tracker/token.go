package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/server"
)

var tokenRecruiter string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a Bearer token for the candidates API",
	Long: `Mint a JWT signed with JWT_SECRET. The recruiter name becomes the
default processed_by value for candidates written with the token.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRecruiter, "recruiter", "", "Recruiter name (default from RECRUITER)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	recruiter := tokenRecruiter
	if recruiter == "" {
		recruiter = cfg.Recruiter
	}
	token, err := mintToken(recruiter)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func mintToken(recruiter string) (string, error) {
	if recruiter == "" {
		return "", fmt.Errorf("--recruiter is required")
	}
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return "", err
	}
	return server.NewJWTService(jwtCfg).GenerateToken(recruiter)
}
