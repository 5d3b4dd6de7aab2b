package app

import (
	"context"
	"sync"

	"github.com/eiannone/keyboard"
)

var paletteKeys = []rune{'z', 'x', 'c', 'v', 'b', 'n', 'm', ','}

// keyCommand maps a key press to a command.
func keyCommand(char rune, key keyboard.Key) (Command, bool) {
	switch key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return Command{Kind: CmdQuit}, true
	case keyboard.KeyEnter:
		return Command{Kind: CmdTap}, true
	case keyboard.KeyTab:
		return Command{Kind: CmdNextScene}, true
	}

	switch {
	case char >= '1' && char <= '8':
		return Command{Kind: CmdCycleMode, Channel: int(char - '1')}, true
	case char == '0':
		return Command{Kind: CmdReset}, true
	case char == 'q' || char == 'Q':
		return Command{Kind: CmdQuit}, true
	case char == 'p' || char == 'P':
		return Command{Kind: CmdToggleUI}, true
	case char == 'r' || char == 'R':
		return Command{Kind: CmdResetRandom}, true
	case char == '.':
		return Command{Kind: CmdPaletteNone}, true
	case char == '/':
		return Command{Kind: CmdPaletteAll}, true
	case char == '[':
		return Command{Kind: CmdSlower}, true
	case char == ']':
		return Command{Kind: CmdFaster}, true
	}
	for i, k := range paletteKeys {
		if char == k {
			return Command{Kind: CmdTogglePalette, Index: i}, true
		}
	}
	return Command{}, false
}

func (a *App) startInputListener(ctx context.Context) {
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		return
	}

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			cmd, ok := keyCommand(char, key)
			if !ok {
				continue
			}
			if cmd.Kind == CmdQuit {
				// quit must not be dropped by a full queue
				select {
				case a.commands <- cmd:
				case <-ctx.Done():
				}
				return
			}
			a.submit(cmd)
		}
	}()
}
