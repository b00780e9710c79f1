package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/game-exchange-token/gxt"
	"github.com/game-exchange-token/gxt/internal/logging"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new signing key and print it as a gxk token",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cliLogger()
			start := time.Now()

			tok, err := gxt.MakeKey()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}

			logger.Debug("generated key", logging.KeyCommand, "keygen", logging.KeyPrefix, "gxk", logging.KeyDuration, time.Since(start))
			fmt.Println(tok)
			reportSize(logger, tok)
			return nil
		},
	}
}

func idCmd() *cobra.Command {
	var (
		keyToken    string
		metaJSON    string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "id",
		Short: "Build an ID card token sharing your public keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cliLogger()

			meta, err := resolveMeta(metaJSON, interactive)
			if err != nil {
				return err
			}

			tok, err := gxt.MakeIDCard(keyToken, meta)
			if err != nil {
				return fmt.Errorf("build id card: %w", err)
			}

			logger.Debug("built id card", logging.KeyCommand, "id", logging.KeyPrefix, "gxi")
			fmt.Println(tok)
			reportSize(logger, tok)
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyToken, "key", "k", "", "signing key token (gxk) or raw hex")
	cmd.Flags().StringVarP(&metaJSON, "meta-json", "m", "", "meta payload as a JSON value")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for meta fields instead of --meta-json")
	cmd.MarkFlagRequired("key")

	return cmd
}

func sendCmd() *cobra.Command {
	var (
		keyToken    string
		toToken     string
		payloadJSON string
		parentHex   string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Build an encrypted message token for a recipient's ID card",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cliLogger()

			var payload interface{}
			if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
				return fmt.Errorf("parse --payload-json: %w", err)
			}

			var parent []byte
			if parentHex != "" {
				p, err := hex.DecodeString(parentHex)
				if err != nil {
					return fmt.Errorf("parse --parent: %w", err)
				}
				parent = p
			}

			tok, err := gxt.MakeMessage(keyToken, toToken, payload, parent)
			if err != nil {
				return fmt.Errorf("build message: %w", err)
			}

			logger.Debug("built message", logging.KeyCommand, "send", logging.KeyPrefix, "gxm")
			fmt.Println(tok)
			reportSize(logger, tok)
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyToken, "key", "k", "", "sender's signing key token (gxk) or raw hex")
	cmd.Flags().StringVarP(&toToken, "to", "t", "", "recipient's ID card token (gxi)")
	cmd.Flags().StringVarP(&payloadJSON, "payload-json", "p", "", "message payload as a JSON value")
	cmd.Flags().StringVar(&parentHex, "parent", "", "parent token id, as hex, to chain from")
	cmd.MarkFlagRequired("key")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("payload-json")

	return cmd
}

func verifyCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a token's signature and print its envelope view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cliLogger()

			view, err := gxt.Verify(args[0])
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}

			logger.Debug("verified token", logging.KeyCommand, "verify", logging.KeyKind, view.Kind)
			return printView(view, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope view as plain JSON instead of styled output")
	return cmd
}

func decryptCmd() *cobra.Command {
	var (
		keyToken string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "decrypt <token>",
		Short: "Verify a message token and decrypt its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cliLogger()

			view, err := gxt.Decrypt(args[0], keyToken)
			if err != nil {
				return fmt.Errorf("decrypt: %w", err)
			}

			logger.Debug("decrypted token", logging.KeyCommand, "decrypt", logging.KeyKind, view.Kind)
			return printView(view, asJSON)
		},
	}

	cmd.Flags().StringVarP(&keyToken, "key", "k", "", "recipient's signing key token (gxk) or raw hex")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the envelope view as plain JSON instead of styled output")
	cmd.MarkFlagRequired("key")

	return cmd
}

// resolveMeta returns the ID card meta value from --meta-json, or prompts
// interactively when --interactive was given and no JSON was supplied.
func resolveMeta(metaJSON string, interactive bool) (interface{}, error) {
	if metaJSON != "" {
		var meta interface{}
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("parse --meta-json: %w", err)
		}
		return meta, nil
	}
	if interactive {
		meta, err := promptMeta()
		if err != nil {
			return nil, err
		}
		return meta, nil
	}
	return nil, nil
}

func cliLogger() *slog.Logger {
	if !verbose {
		return logging.NopLogger()
	}
	return logging.NewLogger("debug", logFmt)
}

func reportSize(logger *slog.Logger, token string) {
	logger.Debug(fmt.Sprintf("token size: %s", humanize.Bytes(uint64(len(token)))), logging.KeySize, len(token))
}
