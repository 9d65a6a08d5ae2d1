// Package rpc holds the request and response contracts of the single-endpoint
// quiz API. Requests form a closed set keyed by their action name; Decode turns
// a raw body into one of them and validates it before anything else runs.
package rpc

const (
	ActionLogin            = "login"
	ActionAddUser          = "add_user"
	ActionGetQuestions     = "get_questions"
	ActionGetBookQuestions = "get_book_questions"
	ActionGetGenres        = "get_genres"
	ActionGetBooks         = "get_books"
	ActionCreateBook       = "create_book"
	ActionSubmitAnswers    = "submit_answers"
	ActionGetStats         = "get_stats"
	ActionGetHistory       = "get_history"
	ActionImportQuestions  = "import_questions"
	ActionGetRecentImports = "get_recent_imports"
)

// Defaults applied when a request omits the field.
const (
	DefaultQuestionCount = 10
	DefaultHistoryLimit  = 20
	DefaultImportsLimit  = 5
)

// Request is implemented by every action payload.
type Request interface {
	ActionName() string
}
