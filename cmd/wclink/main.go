// cmd/wclink/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/tamzrod/wclink/internal/catalog"
	"github.com/tamzrod/wclink/internal/codec"
	"github.com/tamzrod/wclink/internal/config"
	"github.com/tamzrod/wclink/internal/dispatch"
	"github.com/tamzrod/wclink/internal/equation"
	"github.com/tamzrod/wclink/internal/monitor"
	"github.com/tamzrod/wclink/internal/transfer"
	"github.com/tamzrod/wclink/internal/transport"
)

const usage = `usage: wclink [flags] <command> [args]

commands:
  download -out FILE     read the loop's catalog from the device
  upload -in FILE        write a catalog to the device
  read [-hex] NAME       read one parameter
  write NAME VALUE       write one parameter
  lookup [-pipe N] NAME  print a parameter's register address
  lookup                 list the variant's parameter names
  unlock | lock          open or close the factory registers
  commit                 store current values as factory defaults
`

func main() {
	cfgPath := flag.String("config", "wclink.yaml", "config file")
	loopIdx := flag.Int("loop", 1, "loop index")
	showMon := flag.Bool("monitor", false, "print the bus monitor after the run")
	monDB := flag.String("monitor-db", "", "append the bus monitor to this SQLite file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage); flag.PrintDefaults() }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	loop, ok := cfg.Loop(*loopIdx)
	if !ok {
		log.Fatalf("loop %d not configured", *loopIdx)
	}
	variant, err := catalog.ParseVariant(loop.Variant)
	if err != nil {
		log.Fatalf("loop %d: %v", loop.Index, err)
	}

	if cmd == "lookup" {
		if err := lookup(os.Stdout, variant, args); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Channel + sequencer
	// --------------------

	chCfg, ok := cfg.Channel(loop.Channel)
	if !ok {
		log.Fatalf("loop %d: channel %d not configured", loop.Index, loop.Channel)
	}

	mon := monitor.New()
	reg, closeChannels, err := transport.Build([]transport.Config{chCfg.Transport()}, mon)
	if err != nil {
		log.Fatalf("channel open failed: %v", err)
	}
	defer closeChannels()

	ch, err := reg.Get(chCfg.ID)
	if err != nil {
		log.Fatal(err)
	}

	seq := transfer.New(dispatch.New(mon), ch, transfer.Options{
		SlaveID:       cfg.Transfer.SlaveID,
		Settle:        cfg.Transfer.Settle(),
		RestartSettle: cfg.Transfer.RestartSettle(),
		Progress:      progressPrinter(os.Stdout),
		Prompter:      newPrompter(os.Stdin, os.Stdout),
		Logger:        slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})

	session, runErr := run(ctx, seq, cfg, variant, cmd, args)

	if *showMon {
		fmt.Print(monitor.Render(mon.Entries()))
	}
	if *monDB != "" {
		if err := archive(context.Background(), *monDB, session, mon); err != nil {
			log.Printf("monitor archive failed: %v", err)
		}
	}

	if runErr != nil {
		closeChannels()
		log.Fatalf("%s failed: %v", cmd, runErr)
	}
}

// run executes one command and returns the session id used for archiving.
func run(ctx context.Context, seq *transfer.Sequencer, cfg *config.Config, variant catalog.Variant, cmd string, args []string) (string, error) {
	switch cmd {
	case "download":
		fs := flag.NewFlagSet("download", flag.ExitOnError)
		out := fs.String("out", "equation.csv", "output file")
		fs.Parse(args)

		m, err := loadCatalog(filepath.Join(cfg.TemplatesDir, catalog.TemplateFile(variant)))
		if err != nil {
			return "", err
		}
		res, err := seq.Download(ctx, m)
		if err != nil {
			return "", err
		}
		report(res)
		if res.Outcome != transfer.Completed {
			return res.SessionID.String(), fmt.Errorf("download %s", res.Outcome)
		}
		return res.SessionID.String(), saveCatalog(*out, m)

	case "upload":
		fs := flag.NewFlagSet("upload", flag.ExitOnError)
		in := fs.String("in", "equation.csv", "input file")
		fs.Parse(args)

		m, err := loadCatalog(*in)
		if err != nil {
			return "", err
		}
		res, err := seq.Upload(ctx, m)
		if err != nil {
			return "", err
		}
		report(res)
		if res.Outcome != transfer.Completed {
			return res.SessionID.String(), fmt.Errorf("upload %s", res.Outcome)
		}
		return res.SessionID.String(), nil

	case "read", "write":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		hexMode := fs.Bool("hex", false, "print registers as hex")
		fs.Parse(args)
		args = fs.Args()

		if (cmd == "read" && len(args) != 1) || (cmd == "write" && len(args) != 2) {
			return "", fmt.Errorf("usage: wclink read NAME | wclink write NAME VALUE")
		}
		m, err := loadCatalog(filepath.Join(cfg.TemplatesDir, catalog.TemplateFile(variant)))
		if err != nil {
			return "", err
		}
		e, ok := m.Find(args[0])
		if !ok {
			return "", fmt.Errorf("%s: not in %s catalog", args[0], variant)
		}
		if cmd == "read" {
			if err := seq.ReadEntry(ctx, e); err != nil {
				return "", err
			}
			for i, v := range e.Values {
				fmt.Printf("%s = %s\n", e.Label(i), displayValue(e.Type, v, *hexMode))
			}
			return "", nil
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "", fmt.Errorf("value %q: %w", args[1], err)
		}
		e.Quantity = 1
		e.Values = []float64{v}
		slave := e.SlaveID
		if slave == 0 {
			slave = cfg.Transfer.SlaveID
		}
		fmt.Println(dispatch.Preview(transfer.WriteRequest(e, 0, slave)))
		return "", seq.WriteEntry(ctx, e)

	case "unlock":
		return "", seq.UnlockFactoryDefaults(ctx)
	case "lock":
		return "", seq.LockFactoryDefaults(ctx)
	case "commit":
		return "", seq.CommitFactoryDefaults(ctx)

	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
}

// lookup prints the register address of one parameter, or every name
// the variant knows when none is given.
func lookup(out io.Writer, variant catalog.Variant, args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	pipe := fs.Int("pipe", 0, "pipe index")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch fs.NArg() {
	case 0:
		for _, n := range catalog.Names(variant) {
			fmt.Fprintln(out, n)
		}
		return nil
	case 1:
		addr, err := catalog.Address(variant, *pipe, fs.Arg(0))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, addr)
		return nil
	default:
		return fmt.Errorf("usage: wclink lookup [-pipe N] [NAME]")
	}
}

// displayValue renders one read value the way the register view shows it.
func displayValue(t equation.DataType, v float64, hexMode bool) string {
	switch t {
	case equation.Float:
		regs := codec.EncodeFloat(float32(v))
		return codec.FormatDisplay(regs[:], hexMode, true)
	case equation.Integer:
		return codec.FormatDisplay([]uint16{codec.Word(v)}, hexMode, false)
	default:
		return equation.FormatValue(t, v)
	}
}

func report(res transfer.Result) {
	fmt.Printf("%s %s: %d/%d items, %d failures (session %s)\n",
		res.Mode, res.Outcome, res.Completed, res.Total, len(res.Failures), res.SessionID)
	for _, f := range res.Failures {
		fmt.Printf("  %v\n", f)
	}
}

func loadCatalog(path string) (*equation.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return equation.Read(f)
}

func saveCatalog(path string, m *equation.Map) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := equation.Write(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func archive(ctx context.Context, path, session string, mon *monitor.Monitor) error {
	if session == "" {
		session = "adhoc"
	}
	a, err := monitor.OpenArchive(path)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Save(ctx, session, mon.Entries())
}
