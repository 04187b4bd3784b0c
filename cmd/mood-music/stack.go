package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/justestif/go-mood-music/internal/analyzer"
	"github.com/justestif/go-mood-music/internal/cache"
	"github.com/justestif/go-mood-music/internal/config"
	"github.com/justestif/go-mood-music/internal/conversation"
	"github.com/justestif/go-mood-music/internal/db"
	"github.com/justestif/go-mood-music/internal/imageclf"
	"github.com/justestif/go-mood-music/internal/janitor"
	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/llm"
	"github.com/justestif/go-mood-music/internal/logging"
	"github.com/justestif/go-mood-music/internal/recommend"
	"github.com/justestif/go-mood-music/internal/saavn"
	"github.com/justestif/go-mood-music/internal/search"
	"github.com/justestif/go-mood-music/internal/spotify"
)

// stack is the wired engine plus what serve needs to run around it.
type stack struct {
	engine     *conversation.Engine
	classifier *imageclf.Client
	// purger is non-nil when the result store needs periodic cleanup.
	purger  janitor.CachePurger
	closers []func()
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func buildStack(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stack, error) {
	st := &stack{}

	searcher, err := buildSearcher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := st.buildStore(ctx, cfg, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	gen, err := llm.New(cfg.LLMClient(), logging.Component(logger, "llm"))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating generative client: %w", err)
	}
	if gen == nil {
		logger.Info().Msg("no generative provider configured; open-ended replies use the fallback")
	}

	lex := lexicon.Default()
	resolver := recommend.NewResolver(lex)
	moods := analyzer.New(gen,
		analyzer.WithLexicon(lex),
		analyzer.WithTimeout(cfg.LLM.Timeout),
		analyzer.WithLogger(logging.Component(logger, "analyzer")),
	)
	fetcher := search.NewFetcher(searcher, store, resolver,
		search.WithLimits(cfg.Search.PrimaryLimit, cfg.Search.FallbackLimit),
		search.WithLogger(logging.Component(logger, "search")),
	)

	st.engine = conversation.NewEngine(resolver, moods, fetcher,
		conversation.WithLexicon(lex),
		conversation.WithLogger(logging.Component(logger, "conversation")),
	)
	st.classifier = imageclf.NewClient(cfg.ImageClassifier())
	return st, nil
}

func buildSearcher(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (search.Searcher, error) {
	switch cfg.Search.Provider {
	case config.SearchSpotify:
		client, err := spotify.NewWithCredentials(ctx, cfg.Spotify())
		if err != nil {
			return nil, fmt.Errorf("creating spotify client: %w", err)
		}
		return client, nil
	default:
		return saavn.NewClient(cfg.Saavn(), saavn.WithLogger(logging.Component(logger, "saavn"))), nil
	}
}

func (st *stack) buildStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (search.Store, error) {
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		rs, err := cache.NewRedisStore(ctx, cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		st.closers = append(st.closers, func() { _ = rs.Close() })
		logger.Info().Str("addr", cfg.Cache.RedisAddr).Msg("using redis result cache")
		return rs, nil

	case config.CachePostgres:
		database, err := db.New(ctx, cfg.Cache.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		st.closers = append(st.closers, database.Close)
		if err := database.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		cs := db.NewCacheStore(database.SearchCache(), cfg.Cache.TTL)
		st.purger = cs
		logger.Info().Msg("using postgres result cache")
		return cs, nil

	default:
		ms := search.NewMemoryStore(cfg.Cache.TTL)
		st.purger = ms
		return ms, nil
	}
}
