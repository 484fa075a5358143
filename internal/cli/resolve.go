package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcfw/didkit/internal/config"
	"github.com/tcfw/didkit/pkg/did/resolver"
)

var (
	resolveCmd = &cobra.Command{
		Use:   "resolve <did>",
		Short: "Resolve a DID to its document",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}

	derefCmd = &cobra.Command{
		Use:   "deref <did-url>",
		Short: "Dereference a DID URL fragment to a verification method",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeref,
	}
)

func newRegistry(cfg *config.Config) *resolver.Registry {
	reg := resolver.Default()
	reg.Register(resolver.MethodWeb, resolver.NewWebResolver(&resolver.RetryFetcher{Inner: &resolver.HTTPFetcher{}}))
	reg.Register(resolver.MethodDNS, resolver.NewDNSResolver(reg, cfg.DNSServer()))

	return reg
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ResolverTimeout())
	defer cancel()

	doc, err := newRegistry(cfg).Resolve(ctx, args[0])
	if err != nil {
		return errors.Wrap(err, "resolving DID")
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "rendering document")
	}

	fmt.Println(string(out))
	return nil
}

func runDeref(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ResolverTimeout())
	defer cancel()

	vm, err := newRegistry(cfg).Dereference(ctx, args[0])
	if err != nil {
		return errors.Wrap(err, "dereferencing DID URL")
	}

	out, err := json.MarshalIndent(vm, "", "  ")
	if err != nil {
		return errors.Wrap(err, "rendering verification method")
	}

	fmt.Println(string(out))
	return nil
}
