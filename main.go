// uilingo — UI-string localization helper: translates and detects the
// language of interface strings through a cloud model service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/uilingo/uilingo/config"
	"github.com/uilingo/uilingo/credentials"
	"github.com/uilingo/uilingo/i18n"
	"github.com/uilingo/uilingo/langtable"
	"github.com/uilingo/uilingo/translator"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	flagProfile string
	flagAPIKey  string
	flagModel   string
	flagBaseURL string
	flagProxy   string
	flagVerbose bool
)

// sessionOptions merges the persisted config with command-line flags
// (flags win).
func sessionOptions(cfg *config.Config) translator.Options {
	opts := translator.Options{
		Profile: cfg.Profile,
		Model:   cfg.Model,
		APIKey:  flagAPIKey,
		BaseURL: flagBaseURL,
		Proxy:   flagProxy,
		Verbose: flagVerbose,
	}
	if flagProfile != "" {
		opts.Profile = flagProfile
	}
	if flagModel != "" {
		opts.Model = flagModel
	}
	return opts
}

// guidance returns the remediation hint for a classified fault kind.
func guidance(kind translator.Kind) string {
	switch kind {
	case translator.KindConfiguration:
		return "Check your credentials and network: 'uilingo auth status' shows the stored profiles."
	case translator.KindModelNotFound:
		return "Check the model identifier, or request access to the model for your account."
	case translator.KindAccessDenied:
		return "Your API key was rejected. Update it with 'uilingo auth set'."
	case translator.KindRateLimited:
		return "The service is throttling requests. Wait a moment and retry."
	default:
		return "The service reported a fault. Retry later; if it persists, check the service status."
	}
}

// reportError prints the fault and its remediation hint.
func reportError(err error) {
	logError("%v", err)
	var terr *translator.Error
	if errors.As(err, &terr) {
		logWarning("%s", guidance(terr.Kind))
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "uilingo",
		Short: "UI-string localization helper backed by a cloud model service",
		Long: `uilingo — translate and detect the language of UI strings using a
cloud-hosted model.

Credentials come from the local profile store (see 'uilingo auth'),
the UILINGO_API_KEY environment variable, or the --api-key flag.
Defaults (profile, model, languages) persist in ` + config.FilePath() + `.

Commands:
  translate   Translate UI strings into a target language
  detect      Detect the language of a string
  languages   List supported language codes
  auth        Manage credential profiles`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&flagProfile, "profile", "", "Credential profile name")
	root.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key (overrides profile and environment)")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "Model identifier")
	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Service endpoint override")
	root.PersistentFlags().StringVar(&flagProxy, "proxy", "", "HTTP/HTTPS proxy URL")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose debug output")

	root.AddCommand(
		newTranslateCmd(),
		newDetectCmd(),
		newLanguagesCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var to, from string

	cmd := &cobra.Command{
		Use:   "translate [flags] TEXT...",
		Short: "Translate UI strings into a target language",
		Long: `Translate one or more UI strings into the target language.

All strings given on one invocation share a session, so the model sees
the earlier strings as context. Prior exchanges are resent on every
request: very large batches are better split across invocations.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if to == "" {
				to = cfg.TargetLanguage
			}
			if to == "" {
				return fmt.Errorf("no target language: use --to or set target_language in %s", config.FilePath())
			}
			if from == "" {
				from = cfg.SourceLanguage
			}
			return runTranslate(sessionOptions(cfg), args, to, from)
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "Target language code (e.g. fr, pt-BR)")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Source language code (auto = unspecified)")

	return cmd
}

func runTranslate(opts translator.Options, texts []string, to, from string) error {
	sess, err := translator.New(opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if flagVerbose {
		logInfo("model: %s, target: %s (%s)", sess.Model(), to, langtable.Resolve(to))
	}

	count := 0
	for _, text := range texts {
		out, err := sess.Translate(ctx, text, to, from)
		if err != nil {
			return err
		}
		fmt.Println(out)
		count++
	}

	logSuccess(i18n.N("Translated %d string", "Translated %d strings", count), count)
	return nil
}

// ---------------------------------------------------------------------------
// detect
// ---------------------------------------------------------------------------

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect TEXT",
		Short: "Detect the language of a string",
		Long: `Detect the language of a string and print its two-letter code.

Detection is best-effort: on any service fault the default code ("` +
			translator.DefaultLanguage + `") is printed instead of an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			sess, err := translator.New(sessionOptions(cfg))
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, cancel := signalContext()
			defer cancel()

			code := sess.DetectLanguage(ctx, args[0])
			logInfo("%s %s (%s)", i18n.T("Detected language:"), code, langtable.Resolve(code))
			fmt.Println(code)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported language codes",
		Run: func(cmd *cobra.Command, args []string) {
			codes := langtable.Codes()
			sort.Strings(codes)

			fmt.Fprintf(os.Stderr, "\n%s\n", i18n.T("Supported languages:"))
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 40))
			for _, code := range codes {
				fmt.Printf("  %-8s %s\n", code, langtable.Resolve(code))
			}
		},
	}
}

// ---------------------------------------------------------------------------
// auth (credential profile management)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage credential profiles",
		Long: `Manage the local credential profile store.

Profiles are stored in ` + credentials.FilePath() + ` with owner-only
permissions. The UILINGO_API_KEY environment variable and the --api-key
flag take precedence over stored profiles.`,
	}

	cmd.AddCommand(newAuthSetCmd(), newAuthStatusCmd(), newAuthRemoveCmd())
	return cmd
}

func newAuthSetCmd() *cobra.Command {
	var region, baseURL string

	cmd := &cobra.Command{
		Use:   "set [PROFILE] API_KEY",
		Short: "Store an API key for a profile",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := credentials.DefaultProfile
			key := args[0]
			if len(args) == 2 {
				name, key = args[0], args[1]
			}

			err := credentials.Set(name, &credentials.Profile{
				Key:     key,
				Region:  region,
				BaseURL: baseURL,
			})
			if err != nil {
				return err
			}
			logSuccess(i18n.T("Saved credentials for profile %q"), name)
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "Service region for this profile")
	cmd.Flags().StringVar(&baseURL, "endpoint", "", "Service endpoint for this profile")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored profiles",
		Run: func(cmd *cobra.Command, args []string) {
			store := credentials.Load()
			if len(store) == 0 {
				logInfo("%s", i18n.T("No credentials stored"))
				return
			}

			names := make([]string, 0, len(store))
			for name := range store {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				p := store[name]
				line := fmt.Sprintf("  %-12s %s", name, credentials.MaskKey(p.Key))
				if p.Region != "" {
					line += "  region=" + p.Region
				}
				if p.BaseURL != "" {
					line += "  endpoint=" + p.BaseURL
				}
				fmt.Fprintln(os.Stderr, line)
			}
		},
	}
}

func newAuthRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [PROFILE]",
		Short: "Remove a stored profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := credentials.DefaultProfile
			if len(args) == 1 {
				name = args[0]
			}
			if err := credentials.Remove(name); err != nil {
				return err
			}
			logSuccess(i18n.T("Removed credentials for profile %q"), name)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("uilingo version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}
