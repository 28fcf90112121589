package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/adapters"
	"NewsDigest/internal/infrastructure/credentials"
)

func newAuthCmd() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Authorize adapters that need user consent",
	}

	var (
		configPath  string
		adapterName string
	)
	gmail := &cobra.Command{
		Use:   "gmail",
		Short: "Run the OAuth consent flow for a gmail adapter and store its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			entry, err := findAdapter(cfg, adapters.TypeGmail, adapterName)
			if err != nil {
				return err
			}
			return authorizeGmail(cmd.Context(), entry, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	gmail.Flags().StringVar(&configPath, "config", "", "path to YAML config (default $NEWSDIGEST_CONFIG)")
	gmail.Flags().StringVar(&adapterName, "adapter", "gmail", "name of the gmail adapter entry")

	auth.AddCommand(gmail)
	return auth
}

func findAdapter(cfg config.Config, kind, name string) (config.AdapterConfig, error) {
	for _, a := range cfg.Adapters {
		if a.Type == kind && a.Name == name {
			return a, nil
		}
	}
	return config.AdapterConfig{}, fmt.Errorf("%w: no %s adapter named %q", domain.ErrConfiguration, kind, name)
}

func authorizeGmail(ctx context.Context, entry config.AdapterConfig, in io.Reader, out io.Writer) error {
	raw := entry.Secret("clientSecrets")
	if raw == "" {
		return fmt.Errorf("%w: adapter %s: credentials.clientSecrets is empty", domain.ErrConfiguration, entry.Name)
	}
	oauthCfg, err := credentials.GoogleConfigFromJSON([]byte(raw), credentials.GmailReadonlyScope)
	if err != nil {
		return fmt.Errorf("%w: adapter %s: %v", domain.ErrConfiguration, entry.Name, err)
	}

	authURL := oauthCfg.AuthCodeURL("newsdigest", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Open this URL, grant access, then paste the code parameter from the redirect:\n\n%s\n\ncode: ", authURL)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read code: %w", err)
		}
		return errors.New("read code: no input")
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return errors.New("read code: empty")
	}

	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	store := credentials.NewFileTokenStore(adapters.GmailTokenPath(entry))
	if err := store.Save(tok); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nToken saved to %s\n", store.Path())
	return nil
}
