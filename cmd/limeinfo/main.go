// limeinfo inspects LiME physical memory dumps: region layout, hex dumps of
// physical ranges and an interactive shell.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/urfave/cli"

	"limeconn/internal/logflags"
	"limeconn/lime"
)

const usage = `limeinfo inspects LiME memory acquisition dumps, listing the captured
physical regions and reading arbitrary physical address ranges`

func main() {
	app := cli.NewApp()
	app.Name = "limeinfo"
	app.Usage = usage
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "verbose, v", Usage: "enable debug logging"},
	}
	app.Commands = []cli.Command{
		info,
		read,
		shell,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var info = cli.Command{
	Name:      "info",
	Usage:     "list the regions captured in a dump",
	ArgsUsage: "<dump>",
	Action: func(ctx *cli.Context) error {
		d, err := openDump(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		printRegions(d)
		return nil
	},
}

var read = cli.Command{
	Name:      "read",
	Usage:     "hex dump a physical address range",
	ArgsUsage: "<dump> <addr> <len>",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 3 {
			return fmt.Errorf("usage: read <dump> <addr> <len>")
		}
		d, err := openDump(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		addr, err := parseAddr(ctx.Args().Get(1))
		if err != nil {
			return fmt.Errorf("bad address %q: %v", ctx.Args().Get(1), err)
		}
		n, err := strconv.Atoi(ctx.Args().Get(2))
		if err != nil || n < 0 {
			return fmt.Errorf("bad length %q", ctx.Args().Get(2))
		}

		return dumpRange(d, addr, n)
	},
}

var shell = cli.Command{
	Name:      "shell",
	Usage:     "interactive dump inspection",
	ArgsUsage: "<dump>",
	Action: func(ctx *cli.Context) error {
		d, err := openDump(ctx)
		if err != nil {
			return err
		}
		defer d.Close()

		return runShell(d)
	},
}

func openDump(ctx *cli.Context) (*lime.Dump, error) {
	if ctx.NArg() < 1 {
		return nil, fmt.Errorf("missing dump file argument")
	}
	log := logflags.New(ctx.GlobalBool("verbose"))
	return lime.Open(ctx.Args().First(), lime.WithLogger(log))
}

func printRegions(d *lime.Dump) {
	for i, r := range d.Regions() {
		fmt.Printf("region %d: [0x%x, 0x%x] %d bytes at file offset 0x%x\n",
			i, r.Start, r.End, r.Len(), r.FileOffset)
	}
	fmt.Printf("%d regions, physical span [0x%x, 0x%x]\n",
		d.Index().Count(), d.MinAddr(), d.MaxAddr())
}

func dumpRange(d *lime.Dump, addr uint64, n int) error {
	buf := make([]byte, n)
	if err := d.Read(addr, buf); err != nil {
		return err
	}
	fmt.Print(hex.Dump(buf))
	return nil
}

func runShell(d *lime.Dump) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		words, err := shellquote.Split(scanner.Text())
		if err != nil {
			fmt.Println(err)
			fmt.Print("> ")
			continue
		}
		if len(words) == 0 {
			fmt.Print("> ")
			continue
		}

		switch strings.ToLower(words[0]) {
		case "regions":
			printRegions(d)
		case "span":
			fmt.Printf("[0x%x, 0x%x]\n", d.MinAddr(), d.MaxAddr())
		case "read":
			if len(words) != 3 {
				fmt.Println("usage: read <addr> <len>")
				break
			}
			addr, err := parseAddr(words[1])
			if err != nil {
				fmt.Printf("bad address %q: %v\n", words[1], err)
				break
			}
			n, err := strconv.Atoi(words[2])
			if err != nil || n < 0 {
				fmt.Printf("bad length %q\n", words[2])
				break
			}
			if err := dumpRange(d, addr, n); err != nil {
				fmt.Println(err)
			}
		case "exit", "quit":
			return nil
		case "help":
			fmt.Println("commands: regions | span | read <addr> <len> | exit")
		default:
			fmt.Println("unknown command (try help)")
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

func parseAddr(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}
