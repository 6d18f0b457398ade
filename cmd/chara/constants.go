package main

// Default limits for CLI commands.
const (
	DefaultArchiveLimit = 50
	DefaultSearchLimit  = 20
)

// Valid formats for saving a live ledger.
var validSaveFormats = []string{"json", "openai", "sqlite"}

// Valid formats for converting an export file.
var validExportFormats = []string{"json", "csv", "markdown", "openai", "sqlite"}

// Words that end an interactive chat.
var quitWords = []string{"quit", "退出"}

const chatHelp = `Commands:
  /history           print the whole conversation
  /stats             conversation statistics
  /find <keyword>    exchanges containing keyword
  /range [start] [end]
                     exchanges between two ISO-8601 dates
  /summary           activity summary
  /prompt <text>     replace the system prompt
  /profile           role character report
  /skill <name>      add a skill (role characters)
  /improve <points>  raise the performance score (role characters)
  /save              export the conversation
  quit, 退出          leave`
