package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/didkit/internal/config"
	"github.com/tcfw/didkit/internal/keystore"
	"github.com/tcfw/didkit/internal/utils/logging"
	"github.com/tcfw/didkit/pkg/cryptography"
	"github.com/tcfw/didkit/pkg/did/resolver"
)

var (
	keyCmd = &cobra.Command{
		Use:   "key",
		Short: "Key material commands",
	}

	key_generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key pair and print its DID",
		RunE:  runKeyGenerate,
	}

	key_listCmd = &cobra.Command{
		Use:   "list",
		Short: "List stored key pairs",
		RunE:  runKeyList,
	}
)

func init() {
	key_generateCmd.Flags().StringP("algorithm", "a", string(cryptography.Ed25519), "key algorithm (ed25519 or x25519)")
	key_generateCmd.Flags().Bool("no-store", false, "do not persist the key pair to the keystore")
}

func runKeyGenerate(cmd *cobra.Command, args []string) error {
	alg, _ := cmd.Flags().GetString("algorithm")
	noStore, _ := cmd.Flags().GetBool("no-store")

	kp, err := cryptography.Generate(cryptography.Algorithm(alg))
	if err != nil {
		return errors.Wrap(err, "generating key pair")
	}
	defer kp.Zero()

	didStr, err := resolver.KeyDID(kp)
	if err != nil {
		return errors.Wrap(err, "formatting DID")
	}

	fp, err := kp.Fingerprint()
	if err != nil {
		return errors.Wrap(err, "fingerprinting key")
	}

	if !noStore {
		cfg, err := config.GetConfig()
		if err != nil {
			return errors.Wrap(err, "loading config")
		}

		store, err := keystore.NewFileStore(cfg.KeystorePath())
		if err != nil {
			return errors.Wrap(err, "opening keystore")
		}

		if err := store.Add(kp); err != nil {
			return errors.Wrap(err, "storing key pair")
		}
	}

	fmt.Println(didStr)
	fmt.Printf("fingerprint: %s\n", fp)
	return nil
}

func runKeyList(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	store, err := keystore.NewFileStore(cfg.KeystorePath())
	if err != nil {
		return errors.Wrap(err, "opening keystore")
	}

	keys, err := store.List()
	if err != nil {
		return errors.Wrap(err, "listing keys")
	}

	for _, kp := range keys {
		fp, err := kp.Fingerprint()
		if err != nil {
			logging.WithError(err).Error("fingerprinting key")
			continue
		}

		didStr, err := resolver.KeyDID(kp)
		if err != nil {
			logging.WithError(err).Error("formatting DID")
			continue
		}

		fmt.Printf("%s\t%s\t%s\n", fp, kp.Algorithm(), didStr)
	}

	return nil
}
