package models

import "strings"

// CommandType enumerates supported bot command categories.
type CommandType string

const (
	CommandBreakEven  CommandType = "bep"
	CommandPrice      CommandType = "price"
	CommandMix        CommandType = "mix"
	CommandCosts      CommandType = "costs"
	CommandAddCost    CommandType = "cost"
	CommandRemoveCost CommandType = "uncost"
	CommandTicket     CommandType = "ticket"
	CommandCovers     CommandType = "covers"
	CommandHelp       CommandType = "help"
	CommandUnknown    CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"bep":       CommandBreakEven,
	"breakeven": CommandBreakEven,
	"price":     CommandPrice,
	"prezzo":    CommandPrice,
	"mix":       CommandMix,
	"costs":     CommandCosts,
	"cost":      CommandAddCost,
	"uncost":    CommandRemoveCost,
	"ticket":    CommandTicket,
	"covers":    CommandCovers,
	"help":      CommandHelp,
}

// Command represents a parsed operator instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
// Only the command head is lower-cased; arguments keep their case so labels survive.
func ParseCommand(message string) Command {
	trimmed := strings.TrimSpace(message)
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := commandAliases[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
