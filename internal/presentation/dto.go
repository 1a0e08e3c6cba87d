package presentation

import (
	"github.com/zjrosen/vimg/internal/command"
	"github.com/zjrosen/vimg/internal/mode"
)

// CommandDTO represents a registered command for presentation
type CommandDTO struct {
	Mode        string `json:"mode"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Repeatable  bool   `json:"repeatable"` // becomes the repeat-command target
	Hidden      bool   `json:"hidden,omitempty"`
}

// ModuleDTO represents a status module for presentation
type ModuleDTO struct {
	Token string `json:"token"`
}

// FromCommand converts a command as listed for mode m to a DTO.
// Commands of the global group report "global" as their mode.
func FromCommand(cmd *command.Command, m mode.Mode) CommandDTO {
	listed := m
	if cmd.Mode == mode.Global {
		listed = mode.Global
	}
	return CommandDTO{
		Mode:        listed.String(),
		Name:        cmd.Name,
		Description: cmd.Description,
		Repeatable:  cmd.Store,
		Hidden:      cmd.Hide,
	}
}

// FromRegistry lists the commands of modes, each global command once.
func FromRegistry(r *command.Registry, modes []mode.Mode, hidden bool) []CommandDTO {
	dtos := make([]CommandDTO, 0)
	seen := make(map[string]bool)
	for _, m := range modes {
		cmds := r.Iterate(m)
		if hidden {
			cmds = r.All(m)
		}
		for _, cmd := range cmds {
			dto := FromCommand(cmd, m)
			key := dto.Mode + "\x00" + dto.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			dtos = append(dtos, dto)
		}
	}
	return dtos
}

// FromModules converts status module tokens to DTOs
func FromModules(tokens []string) []ModuleDTO {
	dtos := make([]ModuleDTO, len(tokens))
	for i, token := range tokens {
		dtos[i] = ModuleDTO{Token: token}
	}
	return dtos
}
