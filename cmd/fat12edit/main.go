// Command fat12edit is an interactive shell for browsing and editing a
// FAT12 floppy image: it parses a single image-path argument, loads the
// image, and runs a REPL dispatching commands to the path-ops engine.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12dir"
	"github.com/gofat12/fat12edit/fat12ops"
)

func main() {
	app := &cli.App{
		Name:      "fat12edit",
		Usage:     "interactively browse and edit a FAT12 floppy image",
		ArgsUsage: "IMAGE",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to start:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: fat12edit IMAGE")
	}
	path := c.Args().Get(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	img, err := fat12.NewImage(data)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	bootSector, err := img.ReadSectors(0, 1)
	if err != nil {
		return fmt.Errorf("reading boot sector: %w", err)
	}
	boot, err := fat12.ParseBootSector(bootSector)
	if err != nil {
		return fmt.Errorf("parsing boot sector: %w", err)
	}

	session, err := fat12dir.Open(img, boot)
	if err != nil {
		return fmt.Errorf("opening directory session: %w", err)
	}

	sh := &shell{
		ops:     fat12ops.New(session),
		boot:    boot,
		handle:  fat12ops.RootHandle,
		imgPath: path,
		rawData: data,
	}
	sh.loop()

	if sh.dirty {
		if err := os.WriteFile(path, sh.rawData, 0o644); err != nil {
			return fmt.Errorf("writing image: %w", err)
		}
	}
	return nil
}

// shell holds the REPL's working-directory handle and whether any
// mutating command has succeeded; the image is only written back on quit
// if dirty is set.
type shell struct {
	ops     *fat12ops.Ops
	boot    *fat12.BootSector
	handle  fat12ops.Handle
	imgPath string
	rawData []byte
	dirty   bool
}

var mutatingCommands = map[string]bool{
	"cp": true, "mv": true, "rm": true, "mkdir": true,
	"rmdir": true, "cpdir": true, "concat": true,
}

func (sh *shell) loop() {
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s]$ ", sh.handle.AbsPath)
		if !in.Scan() {
			return
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		cmd := tokens[0]
		args := tokens[1:]

		if cmd == "quit" {
			return
		}
		if !isKnownCommand(cmd) {
			fmt.Printf("Unkown command: %s\n", cmd)
			continue
		}
		if err := sh.dispatch(cmd, args); err != nil {
			fmt.Println("Failed to", describeFailure(cmd, err))
			continue
		}
		if mutatingCommands[cmd] {
			sh.dirty = true
		}
	}
}

func isKnownCommand(cmd string) bool {
	switch cmd {
	case "help", "info", "bootable", "ls", "cd", "type", "tree",
		"cp", "mv", "rm", "mkdir", "rmdir", "cpdir", "concat", "quit":
		return true
	}
	return false
}

func describeFailure(cmd string, err error) string {
	return fmt.Sprintf("%s: %s", cmd, err)
}

func (sh *shell) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help":
		printHelp()
		return nil
	case "info":
		sh.printInfo()
		return nil
	case "bootable":
		fmt.Println(sh.boot.Bootable)
		return nil
	case "ls":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return sh.printList(path)
	case "cd":
		if len(args) != 1 {
			return errors.New("usage: cd P")
		}
		handle, err := sh.ops.Cd(sh.handle, args[0])
		if err != nil {
			return err
		}
		sh.handle = handle
		return nil
	case "type":
		if len(args) != 1 {
			return errors.New("usage: type P")
		}
		data, err := sh.ops.Type(sh.handle.ClusterNumber, args[0])
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		fmt.Println()
		return nil
	case "tree":
		out, err := sh.ops.Tree(sh.handle.ClusterNumber, "")
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	case "cp":
		if len(args) != 2 {
			return errors.New("usage: cp S D")
		}
		return sh.ops.Cp(sh.handle.ClusterNumber, args[0], args[1])
	case "mv":
		if len(args) != 2 {
			return errors.New("usage: mv S D")
		}
		return sh.ops.Mv(sh.handle.ClusterNumber, args[0], args[1])
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm P")
		}
		return sh.ops.Rm(sh.handle.ClusterNumber, args[0])
	case "mkdir":
		if len(args) != 1 {
			return errors.New("usage: mkdir P")
		}
		return sh.ops.Mkdir(sh.handle.ClusterNumber, args[0])
	case "rmdir":
		if len(args) != 1 {
			return errors.New("usage: rmdir P")
		}
		return sh.ops.Rmdir(sh.handle.ClusterNumber, args[0])
	case "cpdir":
		if len(args) != 2 {
			return errors.New("usage: cpdir S D")
		}
		return sh.ops.CpDir(sh.handle.ClusterNumber, args[0], args[1])
	case "concat":
		if len(args) != 3 {
			return errors.New("usage: concat A B D")
		}
		return sh.ops.Concat(sh.handle.ClusterNumber, args[0], args[1], args[2])
	}
	return fmt.Errorf("unhandled command %q", cmd)
}

func (sh *shell) printList(path string) error {
	entries, err := sh.ops.List(sh.handle.ClusterNumber, path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		marker := " "
		if e.IsDir() {
			marker = "d"
		}
		fmt.Printf("%s %8d  %s\n", marker, e.Size, e.Name)
	}
	return nil
}

func (sh *shell) printInfo() {
	fmt.Println("OEM name:       ", strings.TrimRight(string(sh.boot.OEMName[:]), " "))
	fmt.Println("Bytes/sector:   ", sh.boot.BytesPerSector)
	fmt.Println("Sectors/cluster:", sh.boot.SectorsPerClus)
	fmt.Println("FAT copies:     ", sh.boot.NumFATs)
	fmt.Println("Root entries:   ", sh.boot.RootEntryCount)
	fmt.Printf("Media byte:      0x%02X\n", sh.boot.Media)
	fmt.Println("Volume label:   ", strings.TrimRight(string(sh.boot.VolumeLabel[:]), " "))
	fmt.Println("Total clusters: ", sh.boot.TotalClusters)
	if name := fat12.DescribeGeometry(sh.boot); name != "" {
		fmt.Println("Geometry:       ", name)
	}
}

func printHelp() {
	fmt.Println(`commands:
  help                show this message
  info                show boot sector / geometry details
  bootable            show whether the boot sector signature is set
  ls [P]              list a directory
  cd P                change the working directory
  type P              print a file's contents
  tree                print the working directory's subtree
  cp S D              copy a file
  mv S D              move/rename a file or directory
  rm P                remove a file
  mkdir P             create a directory
  rmdir P             remove a directory recursively
  cpdir S D           copy a directory recursively
  concat A B D        concatenate two files into a new one
  quit                exit, writing the image if it was modified`)
}
