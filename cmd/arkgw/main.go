package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/arklabs/arkgw/api/v1alpha1"
	"github.com/arklabs/arkgw/internal/a2a"
	"github.com/arklabs/arkgw/internal/agentcard"
	"github.com/arklabs/arkgw/internal/config"
	"github.com/arklabs/arkgw/internal/httpserver"
	"github.com/arklabs/arkgw/internal/httpserver/handlers"
	"github.com/arklabs/arkgw/internal/openai"
	"github.com/arklabs/arkgw/internal/query"
	"github.com/arklabs/arkgw/internal/registry"
	"github.com/arklabs/arkgw/internal/utils"
	"github.com/arklabs/arkgw/internal/version"
	"github.com/arklabs/arkgw/pkg/auth"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "arkgw",
		Short: "arkgw serves cluster agents over A2A and OpenAI-compatible APIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetFull())
		},
	})

	ctx := ctrl.SetupSignalHandler()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctrl.SetLogger(zap.New(zap.UseDevMode(false)))
	log := ctrllog.FromContext(ctx).WithName("arkgw")
	log.Info("starting", "version", version.GetShort())

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = utils.GetResourceNamespace()
	}
	log.Info("resolved configuration", "namespace", namespace, "port", cfg.Port, "baseURL", cfg.ExternalBaseURL())

	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return err
	}
	if err := v1alpha1.AddToScheme(scheme); err != nil {
		return err
	}

	restCfg, err := ctrl.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load kubernetes config: %w", err)
	}
	kubeClient, err := client.New(restCfg, client.Options{Scheme: scheme})
	if err != nil {
		return fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	reg := registry.NewRegistry(kubeClient, namespace)
	driver := query.NewDriver(reg)
	executor := a2a.NewExecutor(driver, cfg.DefaultTimeout())
	projector := agentcard.NewProjector(cfg.ExternalBaseURL(), ctrl.Log.WithName("agentcard"))
	table := a2a.NewRouteTable(httpserver.APIPathA2AAgent)
	reconciler := a2a.NewReconciler(reg, projector, table, a2a.NewHandlerFactory(executor), cfg.EffectivePollInterval())

	authenticator, err := auth.NewAuthenticator(ctx, cfg.Auth.Mode, cfg.Auth.OIDCIssuerURL, cfg.Auth.OIDCApplicationID)
	if err != nil {
		return fmt.Errorf("failed to configure authentication: %w", err)
	}

	server, err := httpserver.NewHTTPServer(httpserver.ServerConfig{
		Router:   mux.NewRouter(),
		BindAddr: ":" + cfg.Port,
		Base: &handlers.Base{
			Registry:   reg,
			Driver:     driver,
			RouteTable: table,
			Proxy:      openai.NewStreamProxy(),
		},
		RouteTable:    table,
		Authenticator: authenticator,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	go func() {
		if err := reconciler.Start(ctx); err != nil {
			log.Error(err, "reconciler stopped")
		}
	}()

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}
