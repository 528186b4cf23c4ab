package biz

import (
	"github.com/tubesieve/tubesieve/internal/biz/repo"
	"github.com/tubesieve/tubesieve/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Classifier *usecase.ClassifierUsecase
	Chat       *usecase.ChatReplyUsecase
}

// Dependencies are the ports the usecases are built on
type Dependencies struct {
	FilterEvaluator repo.Evaluator
	ChatEvaluator   repo.Evaluator
	Lookup          repo.ContextLookup
	ChatLog         repo.ChatLogRepo
}

// Settings carries the explicit configuration of every usecase
type Settings struct {
	Prompts    usecase.PromptConfig
	Classifier usecase.ClassifierConfig
	Chat       usecase.ChatConfig
}

// NewUsecases wires all usecases
func NewUsecases(deps Dependencies, settings Settings) *Usecases {
	return &Usecases{
		Classifier: usecase.NewClassifierUsecase(deps.FilterEvaluator, deps.Lookup, settings.Prompts, settings.Classifier),
		Chat:       usecase.NewChatReplyUsecase(deps.ChatEvaluator, deps.ChatLog, settings.Prompts, settings.Chat),
	}
}
