package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/vrclog/internal/config"
	"github.com/user/vrclog/internal/encoding"
	"github.com/user/vrclog/internal/loader"
	"github.com/user/vrclog/internal/logging"
	"github.com/user/vrclog/internal/prefs"
	"github.com/user/vrclog/internal/ui"
	"github.com/user/vrclog/internal/watch"
	"github.com/user/vrclog/pkg/logformat"
	"github.com/user/vrclog/pkg/notify"
)

func main() {
	followFlag := flag.Bool("f", false, "Follow the log file for new lines")
	debugFlag := flag.Bool("debug", false, "Log at debug level")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vrclog [-f] [-debug] [file]\n")
		fmt.Fprintf(os.Stderr, "  -f\tFollow the log file for new lines\n")
		fmt.Fprintf(os.Stderr, "  -debug\tLog at debug level\n")
		fmt.Fprintf(os.Stderr, "Without a file argument the newest VRChat log is opened.\n")
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if closer := setupLogging(cfg, *debugFlag); closer != nil {
		defer closer.Close()
	}

	path := flag.Arg(0)
	if path == "" {
		path, err = watch.Discover()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "Pass a log file explicitly: vrclog <file>\n")
			os.Exit(1)
		}
	}

	deps, err := buildDeps(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	model := ui.NewModel(cfg, deps, ui.Options{Path: path, Follow: *followFlag})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging routes diagnostics to a file under the config directory so
// they never write over the terminal UI. Logging trouble is not fatal;
// the viewer runs silent instead.
func setupLogging(cfg *config.Config, debug bool) io.Closer {
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}

	file := cfg.Logging.File
	if file == "" {
		logging.Disable()
		return nil
	}
	if !filepath.IsAbs(file) {
		dir, err := config.Dir()
		if err != nil {
			logging.Disable()
			return nil
		}
		file = filepath.Join(dir, file)
	}

	closer, err := logging.InitFile(file, level)
	if err != nil {
		logging.Disable()
		return nil
	}
	return closer
}

// buildDeps wires the parsing pipeline from the configuration
func buildDeps(cfg *config.Config) (ui.Deps, error) {
	var matcher logformat.LineMatcher
	if cfg.Lines.Pattern != "" {
		m, err := logformat.NewLineMatcher(cfg.Lines.Pattern)
		if err != nil {
			return ui.Deps{}, fmt.Errorf("invalid line pattern: %w", err)
		}
		matcher = m
	}

	reader, err := encoding.NewReader(cfg.Encodings, cfg.Read.LargeFileMB<<20, cfg.Read.ChunkMB<<20)
	if err != nil {
		return ui.Deps{}, fmt.Errorf("invalid encodings: %w", err)
	}

	groups := notify.NewClassifier(groupRules(cfg.Groups.Rules))

	ld := loader.New(loader.Options{
		Reader:     reader,
		Classifier: logformat.NewClassifier(matcher, cfg.Lines.LongLineThreshold),
		Groups:     groups,
	}, logging.Component("loader"))

	store := prefs.NewStore(prefsPath())
	if err := store.Load(); err != nil {
		plog := logging.Component("prefs")
		plog.Warn().Err(err).Msg("saved group names unreadable, starting empty")
	}

	return ui.Deps{
		Loader: ld,
		Prefs:  store,
		Groups: groups,
		Log:    logging.Component("ui"),
	}, nil
}

func prefsPath() string {
	dir, err := config.Dir()
	if err != nil {
		return prefs.DefaultFileName
	}
	return filepath.Join(dir, prefs.DefaultFileName)
}

// groupRules converts configured rules to the classifier's form. An empty
// table falls back to the built-in rules.
func groupRules(rules []config.GroupRule) []notify.Rule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]notify.Rule, len(rules))
	for i, r := range rules {
		out[i] = notify.Rule{ID: r.ID, Name: r.Name, AnyOf: r.AnyOf, AllOf: r.AllOf}
	}
	return out
}
