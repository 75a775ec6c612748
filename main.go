package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/quick-hb/internal/api"
	"github.com/dpshade/quick-hb/internal/cli"
	"github.com/dpshade/quick-hb/internal/errors"
	"github.com/dpshade/quick-hb/internal/service"
	"github.com/dpshade/quick-hb/internal/ui"
)

var version = "0.1.0"

// killExistingServers stops other quick-hb API server processes
func killExistingServers() error {
	output, err := exec.Command("pgrep", "-f", "quick-hb.*--serve").Output()
	if err != nil {
		// no processes found or pgrep unavailable
		return nil
	}

	currentPID := os.Getpid()
	for _, pidStr := range strings.Fields(string(output)) {
		pid, err := strconv.Atoi(pidStr)
		if err != nil || pid == currentPID {
			continue
		}

		fmt.Printf("Killing existing server process (PID %d)...\n", pid)
		if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
			syscall.Kill(pid, syscall.SIGKILL)
		}
	}

	time.Sleep(1 * time.Second)
	return nil
}

func printHelp() {
	fmt.Printf(`quick-hb - Spintax-Bausteine für Anträge und Arztbriefe

USAGE:
    quick-hb [OPTIONS] [COMMAND]

OPTIONS:
    --help          Show this help information
    --version       Print version information
    --init          Initialize a new library
    --serve         Start the HTTP API server
    --restart       Kill any running API server instances and restart
    --port          Port for the API server (default: from config, 8080)
    --sync-interval Git pull interval in minutes while serving (default: 5, 0 to disable)

COMMANDS:
    (no command)       Start interactive TUI mode
    list, ls           List records
    show, get <id>     Show a record
    search <query>     Fuzzy search records
    suggest <word>     Autocomplete by title or shortcut
    spin <id>          Resolve one random variant
    variants <id>      Enumerate all variants
    vars, set          Show and set placeholder values
    sections, pick     Edit the document structure and picks
    draft              Show or clear the picks
    compile            Compile the document
    add, edit, delete  Manage records
    import, export     Legacy data.json interchange
    stats              Library statistics
    help               Show CLI command help

EXAMPLES:
    quick-hb                                   # Start interactive mode
    quick-hb --serve --port 9000               # Start the API on port 9000
    quick-hb import data.json                  # Import a browser export
    quick-hb set Name=Schmidt Alter=54         # Fill placeholders
    quick-hb compile -g w --copy               # Compile for a woman and copy

STORAGE:
    Default directory: ~/.quick-hb
    Override with: QUICK_HB_DIR=<path>
`)
}

func main() {
	var showVersion bool
	var initLib bool
	var showHelp bool
	var serve bool
	var restartServer bool
	var port int
	var syncInterval int

	flag.BoolVar(&showVersion, "version", false, "Print version information")
	flag.BoolVar(&initLib, "init", false, "Initialize a new library")
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&serve, "serve", false, "Start the HTTP API server")
	flag.BoolVar(&restartServer, "restart", false, "Kill any running API server instances and restart")
	flag.IntVar(&port, "port", 0, "Port for the API server")
	flag.IntVar(&syncInterval, "sync-interval", 5, "Git pull interval in minutes while serving (0 to disable)")
	flag.Parse()

	if showHelp {
		printHelp()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("quick-hb version %s\n", version)
		os.Exit(0)
	}

	if restartServer && !serve {
		fmt.Printf("Error: --restart flag can only be used with --serve\n")
		os.Exit(1)
	}

	errHandler := errors.NewCLIErrorHandler(os.Getenv("DEBUG") != "" || os.Getenv("VERBOSE") != "")

	svc, err := service.NewService()
	if err != nil {
		fmt.Fprintln(os.Stderr, errHandler.FormatError(err))
		os.Exit(1)
	}

	if initLib {
		if err := svc.InitLibrary(); err != nil {
			fmt.Fprintln(os.Stderr, errHandler.FormatError(err))
			os.Exit(1)
		}
		fmt.Printf("Initialized quick-hb library in %s\n", svc.BaseDir())
		return
	}

	if serve {
		if restartServer {
			fmt.Printf("Restarting API server...\n")
			if err := killExistingServers(); err != nil {
				fmt.Printf("Warning: Error killing existing servers: %v\n", err)
			}
		}
		if port == 0 {
			port = svc.Config().Port
		}
		if err := runServer(svc, port, time.Duration(syncInterval)*time.Minute); err != nil {
			fmt.Fprintf(os.Stderr, "Error running API server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if args := flag.Args(); len(args) > 0 {
		cliHandler := cli.NewCLI(svc)
		if err := cliHandler.ExecuteCommand(args); err != nil {
			fmt.Fprintln(os.Stderr, errHandler.HandleError(err))
			os.Exit(1)
		}
		return
	}

	model, err := ui.NewModel(svc)
	if err != nil {
		fmt.Println(err)
		return
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println(err)
		return
	}
}

// runServer serves the API until SIGINT or SIGTERM. With git sync enabled the
// library is pulled every syncInterval.
func runServer(svc *service.Service, port int, syncInterval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go svc.BackgroundSync(ctx, syncInterval)

	srv := api.NewAPIServer(svc, port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
