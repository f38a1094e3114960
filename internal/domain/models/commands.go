package models

import "strings"

// CommandType enumerates the chat commands household members can send.
type CommandType string

const (
	CommandDelivered CommandType = "delivered"
	CommandReturned  CommandType = "returned"
	CommandPaid      CommandType = "paid"
	CommandBalance   CommandType = "balance"
	CommandHelp      CommandType = "help"
	CommandUnknown   CommandType = "unknown"
)

// Command represents a parsed instruction extracted from a WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from a free-form text message. The leading
// slash is optional and the keyword is case-insensitive; arguments keep their
// original case so payment reasons read as typed.
func ParseCommand(message string) Command {
	tokens := strings.Fields(message)
	cmd := Command{Raw: message, Type: CommandUnknown}
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.TrimPrefix(strings.ToLower(tokens[0]), "/")
	switch CommandType(head) {
	case CommandDelivered, CommandReturned, CommandPaid, CommandBalance, CommandHelp:
		cmd.Type = CommandType(head)
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}
	return cmd
}
