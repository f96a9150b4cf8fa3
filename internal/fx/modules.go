package fx

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/ronakgh97/pokebrains/internal/agent"
	"github.com/ronakgh97/pokebrains/internal/config"
	"github.com/ronakgh97/pokebrains/internal/database"
	"github.com/ronakgh97/pokebrains/internal/llm"
	"github.com/ronakgh97/pokebrains/internal/logger"
	"github.com/ronakgh97/pokebrains/internal/pokeapi"
	"github.com/ronakgh97/pokebrains/internal/repository"
	"github.com/ronakgh97/pokebrains/internal/session"
	"github.com/ronakgh97/pokebrains/internal/tools"
	"github.com/ronakgh97/pokebrains/internal/transport"
)

func ProvideLLMClient(cfg *config.Config, log zerolog.Logger) *llm.Client {
	return llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, log)
}

func ProvideRegistry(pokedex *tools.PokedexTool, generator *tools.TeamGeneratorTool) *tools.Registry {
	return tools.NewRegistry(pokedex, generator)
}

func ProvideAgent(cfg *config.Config, client *llm.Client, registry *tools.Registry, log zerolog.Logger) *agent.Agent {
	return agent.New(cfg.LLMModel, client, registry, log)
}

func ProvideTransport(cfg *config.Config, log zerolog.Logger) *transport.Client {
	return transport.NewClient(cfg.ShowdownURL, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewSuggestionRepository),
	// external clients
	fx.Provide(pokeapi.NewClient),
	fx.Provide(ProvideLLMClient),
	fx.Provide(ProvideTransport),
	// tools + agent
	fx.Provide(tools.NewPokedexTool),
	fx.Provide(tools.NewTeamGeneratorTool),
	fx.Provide(ProvideRegistry),
	fx.Provide(ProvideAgent),
	// session
	fx.Provide(session.New),
)
