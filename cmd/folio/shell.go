package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/internal/render"
	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/kinds"
	"github.com/aretw0/folio/pkg/route"
)

const shellHelp = `Commands:
  ls                      show the tree
  open <item>             make an item active (saves the current one first)
  folder <id>             open a stream view, or expand/collapse a folder
  back                    leave the stream view
  go <path>               open the stream a path routes to (shopping, todos, ...)
  new [folder]            create a memo at the top of a folder
  title <text>            set the title of the active memo
  write <text>            replace the content of the active memo
  append <text>           add a line to the active memo
  show                    show the active memo
  save                    save now
  rm [item]               delete an item (default: the active one)
  mkdir <name> [type]     create a folder or typed stream
  rename <id> <name>      rename a folder
  rmdir <id>              delete a folder and its items
  toggle <id>             expand or collapse a folder
  add <stream> k=v ...    quick-add a structured entry
  set <item> k=v ...      quick-edit a structured entry
  total <stream>          sum a shopping stream
  quit                    save and leave`

var errQuit = errors.New("quit")

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Browse and edit the collection interactively",
	Long: `Shell opens the collection and reads commands from stdin. Edits are
autosaved after the configured delay; the tree is redrawn after every change.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		sh := newShell(os.Stdout)
		svc := openService(ctx, folio.WithRender(sh.render))
		sh.svc = svc

		fmt.Fprintln(os.Stdout, "folio shell; type 'help' for commands")
		sh.printTree()
		if err := sh.session(ctx, os.Stdin); err != nil {
			fatal("Shell failed", err)
		}
	},
}

// shell executes line commands against a Service.
type shell struct {
	svc   *core.Service
	theme render.Theme

	mu  sync.Mutex // guards out; render runs on autosave timers too
	out io.Writer
}

func newShell(out io.Writer) *shell {
	return &shell{out: out, theme: render.DefaultTheme()}
}

// render is the Service view callback. It must not call back into the Service.
func (sh *shell) render(v core.View) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fmt.Fprint(sh.out, render.Tree(v, sh.theme))
}

func (sh *shell) printf(format string, a ...any) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fmt.Fprintf(sh.out, format, a...)
}

func (sh *shell) printTree() {
	v := sh.svc.View()
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fmt.Fprint(sh.out, render.Tree(v, sh.theme))
}

// session runs the command loop and then closes the service, so pending
// edits are saved even when reading input fails.
func (sh *shell) session(ctx context.Context, in io.Reader) error {
	err := sh.run(ctx, in)
	if openSvc == sh.svc {
		openSvc = nil
	}
	return errors.Join(err, sh.svc.Close(ctx))
}

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		sh.printf("> ")
		if !scanner.Scan() {
			sh.printf("\n")
			return scanner.Err()
		}
		err := sh.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			sh.printf("error: %v\n", err)
		}
	}
}

// exec runs one command line.
func (sh *shell) exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	fields := strings.Fields(rest)

	switch name {
	case "help", "?":
		sh.printf("%s\n", shellHelp)
	case "quit", "exit", "q":
		return errQuit
	case "ls", "tree":
		sh.printTree()

	case "open":
		id, err := argID(fields, 0)
		if err != nil {
			return err
		}
		return sh.svc.OnSelectItem(ctx, id)
	case "folder":
		id, err := argID(fields, 0)
		if err != nil {
			return err
		}
		return sh.svc.OnSelectContainer(ctx, id)
	case "back":
		sh.svc.LeaveContainer()
	case "go":
		typ, ok := route.Default().Resolve(rest)
		if !ok {
			return fmt.Errorf("%q does not match any stream", rest)
		}
		if _, ok := sh.svc.SelectContainerByType(ctx, typ); !ok {
			return fmt.Errorf("no %s stream yet (mkdir <name> %s)", typ, typ)
		}

	case "new":
		folder := 0
		if len(fields) > 0 {
			id, err := argID(fields, 0)
			if err != nil {
				return err
			}
			folder = id
		}
		_, err := sh.svc.OnCreateItem(ctx, folder)
		return err
	case "title":
		if !sh.svc.EditTitle(rest) {
			return errNoActive
		}
		sh.printStatus()
	case "write":
		if !sh.svc.EditContent(unescape(rest)) {
			return errNoActive
		}
		sh.printStatus()
	case "append":
		_, content, _ := sh.svc.Buffer()
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if !sh.svc.EditContent(content + unescape(rest)) {
			return errNoActive
		}
		sh.printStatus()
	case "show":
		if sh.svc.ActiveItem() == 0 {
			return errNoActive
		}
		title, content, status := sh.svc.Buffer()
		sh.printf("%s", render.Editor(title, content, sh.svc.CharCount(), status, sh.theme))
	case "save":
		_, saved, err := sh.svc.Save(ctx)
		if err != nil {
			return err
		}
		if !saved {
			return errNoActive
		}

	case "rm":
		if len(fields) == 0 {
			return sh.svc.DeleteActive(ctx)
		}
		id, err := argID(fields, 0)
		if err != nil {
			return err
		}
		return sh.svc.OnDeleteItem(ctx, id)
	case "mkdir":
		var typ core.ContainerType
		name := rest
		if n := len(fields); n > 1 {
			if t := core.ContainerType(fields[n-1]); isStreamType(t) {
				typ = t
				name = strings.Join(fields[:n-1], " ")
			}
		}
		_, err := sh.svc.OnCreateContainer(ctx, name, typ)
		return err
	case "rename":
		id, err := argID(fields, 0)
		if err != nil {
			return err
		}
		_, name, _ := strings.Cut(rest, " ")
		return sh.svc.OnRenameContainer(ctx, id, strings.TrimSpace(name))
	case "rmdir":
		id, err := argID(fields, 0)
		if err != nil {
			return err
		}
		return sh.svc.OnDeleteContainer(ctx, id)
	case "toggle":
		id, err := argID(fields, 0)
		if err != nil {
			return err
		}
		return sh.svc.OnToggleExpand(ctx, id)

	case "add", "set":
		id, err := argID(fields, 0)
		if err != nil {
			return err
		}
		raw, err := parseFields(fields[1:])
		if err != nil {
			return err
		}
		if name == "add" {
			_, err = sh.svc.QuickAdd(ctx, id, raw)
		} else {
			_, err = sh.svc.QuickEdit(ctx, id, raw)
		}
		return err
	case "total":
		id, err := argID(fields, 0)
		if err != nil {
			return err
		}
		total, err := sh.svc.Total(id)
		if err != nil {
			return err
		}
		sh.printf("%s\n", kinds.FormatAmount(total))
	default:
		return fmt.Errorf("unknown command %q (try 'help')", name)
	}
	return nil
}

var errNoActive = errors.New("no active memo (use 'new' or 'open <item>')")

func (sh *shell) printStatus() {
	_, _, status := sh.svc.Buffer()
	sh.printf("%s  %s\n", render.StatusLine(status, sh.theme), sh.theme.Preview.Render(fmt.Sprintf("%d chars", sh.svc.CharCount())))
}

func argID(fields []string, i int) (int, error) {
	if len(fields) <= i {
		return 0, errors.New("missing id")
	}
	id, err := strconv.Atoi(fields[i])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a positive integer", fields[i])
	}
	return id, nil
}

func isStreamType(t core.ContainerType) bool {
	switch t {
	case core.TypeMemo, core.TypeShopping, core.TypeTodo:
		return true
	}
	return false
}

// unescape turns a literal \n typed at the prompt into a newline.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
