// SPDX-License-Identifier: MPL-2.0

package builtins

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/zensh/zensh/pkg/shell"
)

// LuaPromptLabel is the prompt label shown while the Lua session reads input.
const LuaPromptLabel = "ZLUA"

type (
	// PromptLabeler is implemented by line sources whose prompt label can be
	// switched while a sub-session owns the input. SetLabel returns the
	// previous label.
	PromptLabeler interface {
		SetLabel(label string) string
	}

	// luaSession is one Lua state bound to the invocation that created it.
	// gopher-lua states are not goroutine-safe; a session never leaves the
	// goroutine running its command.
	luaSession struct {
		L    *lua.LState
		ctx  context.Context
		inv  *shell.Invocation
		exit *shell.ExitRequest
	}
)

func newLuaCommand() shell.Command {
	return shell.NewCommand(shell.Definition{
		Name:        "lua",
		Description: "Run the embedded Lua interpreter",
		Help: "With arguments, evaluates them as one Lua chunk. Without arguments, starts an interactive Lua session that " +
			"reads from the shell's input until `exit` or end of input. Besides the safe standard libraries, " +
			"`add(a, b)`, `is_equal(a, b)`, `log(msg)` and `shell.eval(input)` are available.",
		Params: "[chunk...]",
		Arity:  shell.Variadic,
		Run:    runLua,
	})
}

func runLua(ctx context.Context, inv *shell.Invocation) error {
	s := newLuaSession(ctx, inv)
	defer s.L.Close()

	if len(inv.Args) > 0 {
		values, err := s.eval(strings.Join(inv.Args, " "))
		if err != nil {
			return err
		}
		s.printValues(values)
		return nil
	}
	return s.repl()
}

func newLuaSession(ctx context.Context, inv *shell.Invocation) *luaSession {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	// io, os, debug and package stay closed.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	L.SetContext(ctx)

	s := &luaSession{L: L, ctx: ctx, inv: inv}
	L.SetGlobal("print", L.NewFunction(s.luaPrint))
	L.SetGlobal("add", L.NewFunction(s.luaAdd))
	L.SetGlobal("is_equal", L.NewFunction(luaIsEqual))
	L.SetGlobal("log", L.NewFunction(s.luaLog))

	shellTable := L.NewTable()
	L.SetField(shellTable, "eval", L.NewFunction(s.luaEval))
	L.SetGlobal("shell", shellTable)
	return s
}

// repl reads chunks from the shell's line source. A chunk that ends in the
// middle of a statement keeps reading lines until it parses.
func (s *luaSession) repl() error {
	src := s.inv.Eval.Lines()
	if src == nil {
		return shell.NewUserInputError(shell.InputBadArgument, s.inv.Name, "no interactive input available, pass a chunk as arguments")
	}
	if labeler, ok := src.(PromptLabeler); ok {
		previous := labeler.SetLabel(LuaPromptLabel)
		defer labeler.SetLabel(previous)
	}

	var chunk strings.Builder
	for {
		line, err := src.Next(s.ctx)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		if chunk.Len() == 0 && (strings.TrimSpace(line) == "exit" || (eof && line == "")) {
			s.inv.Println("Exiting ZLUA shell...")
			return nil
		}
		if chunk.Len() > 0 {
			chunk.WriteByte('\n')
		}
		chunk.WriteString(line)

		values, evalErr := s.eval(chunk.String())
		switch {
		case evalErr == nil:
			s.printValues(values)
		case s.exit != nil:
			return s.exit
		case errors.Is(evalErr, context.Canceled), errors.Is(evalErr, context.DeadlineExceeded):
			return evalErr
		case isIncomplete(evalErr) && !eof:
			continue
		default:
			fmt.Fprintf(s.inv.Stderr, "error: %v\n", evalErr)
		}
		chunk.Reset()

		if eof {
			s.inv.Println("Exiting ZLUA shell...")
			return nil
		}
	}
}

// eval runs chunk as an expression first, so `1 + 1` prints 2, and as a
// statement block when that does not parse.
func (s *luaSession) eval(chunk string) (values []lua.LValue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	fn, err := s.L.LoadString("return " + chunk)
	if err != nil {
		fn, err = s.L.LoadString(chunk)
		if err != nil {
			return nil, err
		}
	}

	top := s.L.GetTop()
	s.L.Push(fn)
	if err := s.L.PCall(0, lua.MultRet, nil); err != nil {
		if s.exit != nil {
			return nil, s.exit
		}
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	n := s.L.GetTop() - top
	values = make([]lua.LValue, 0, n)
	for i := 1; i <= n; i++ {
		values = append(values, s.L.Get(top+i))
	}
	s.L.Pop(n)
	return values, nil
}

func (s *luaSession) printValues(values []lua.LValue) {
	if len(values) == 0 {
		return
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatLuaValue(v)
	}
	s.inv.Println(strings.Join(parts, "\t"))
}

func formatLuaValue(v lua.LValue) string {
	if str, ok := v.(lua.LString); ok {
		return fmt.Sprintf("%q", string(str))
	}
	return v.String()
}

// isIncomplete reports whether a load error was caused by the chunk ending
// before the statement did.
func isIncomplete(err error) bool {
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) || apiErr.Type != lua.ApiErrorSyntax {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "EOF") || strings.Contains(msg, "<eof>")
}

func (s *luaSession) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	s.inv.Println(strings.Join(parts, "\t"))
	return 0
}

func (s *luaSession) luaAdd(L *lua.LState) int {
	sum := L.CheckNumber(1) + L.CheckNumber(2)
	s.inv.Println(sum.String())
	L.Push(sum)
	return 1
}

func luaIsEqual(L *lua.LState) int {
	L.Push(lua.LBool(L.CheckNumber(1) == L.CheckNumber(2)))
	return 1
}

func (s *luaSession) luaLog(L *lua.LState) int {
	msg := L.CheckString(1)
	s.inv.Println(msg)
	s.inv.Eval.Logger().Debug("lua log", "message", msg)
	return 0
}

// luaEval evaluates shell input one nesting level deeper. It returns true,
// or false and the error text. An exit request ends the Lua session too.
func (s *luaSession) luaEval(L *lua.LState) int {
	input := L.CheckString(1)
	err := s.inv.Eval.RunInline(s.ctx, s.inv.Name, input)

	var exit *shell.ExitRequest
	if errors.As(err, &exit) {
		s.exit = exit
		L.RaiseError("exit requested")
		return 0
	}
	if err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}
