package cmd

import (
	"fmt"
	"strings"
)

var commandNames = []string{"tui", "add", "rm", "clear", "ls", "doctor", "config", "logs", "completion", "version", "help"}

// completionCommand prints a shell completion script.
func completionCommand(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tasklist completion <bash|zsh|fish>")
	}
	words := strings.Join(commandNames, " ")

	switch strings.ToLower(args[0]) {
	case "bash":
		fmt.Fprintf(stdout, `# tasklist bash completion
_tasklist() {
  local cur="${COMP_WORDS[COMP_CWORD]}"
  if [ "$COMP_CWORD" -eq 1 ]; then
    COMPREPLY=( $(compgen -W "%s" -- "$cur") )
    return
  fi
  case "${COMP_WORDS[1]}" in
    ls) COMPREPLY=( $(compgen -W "-format" -- "$cur") ) ;;
    completion) COMPREPLY=( $(compgen -W "bash zsh fish" -- "$cur") ) ;;
  esac
}
complete -F _tasklist tasklist
`, words)
	case "zsh":
		fmt.Fprintf(stdout, `#compdef tasklist
# tasklist zsh completion
_tasklist() {
  if (( CURRENT == 2 )); then
    compadd -- %s
    return
  fi
  case "$words[2]" in
    ls) compadd -- -format ;;
    completion) compadd -- bash zsh fish ;;
  esac
}
compdef _tasklist tasklist
`, words)
	case "fish":
		fmt.Fprintf(stdout, `# tasklist fish completion
complete -c tasklist -f -n "__fish_use_subcommand" -a "%s"
complete -c tasklist -f -n "__fish_seen_subcommand_from ls" -l format -a "text json yaml"
complete -c tasklist -f -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`, words)
	default:
		return fmt.Errorf("unsupported shell %q (want bash, zsh or fish)", args[0])
	}
	return nil
}
