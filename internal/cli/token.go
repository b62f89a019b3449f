package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/samims/indexer/internal/service"
)

var (
	flagSubject string
	flagTTL     time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&flagSubject, "subject", "ops", "Subject claim of the token")
	tokenCmd.Flags().DurationVar(&flagTTL, "ttl", 24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(tokenCmd)
}

// tokenCmd only needs AUTH_SECRET, so it skips the full config load.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the trigger surface using AUTH_SECRET",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		secret := os.Getenv("AUTH_SECRET")
		if secret == "" {
			return errors.New("AUTH_SECRET is not set")
		}
		if flagTTL <= 0 {
			return errors.New("--ttl must be positive")
		}

		tok, err := service.NewJWTService(secret, flagTTL).GenerateToken(flagSubject)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
		return err
	},
}
