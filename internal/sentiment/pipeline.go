package sentiment

import (
	"context"
	"strings"
	"time"

	"skandan/tamilnewsworker/config"
	"skandan/tamilnewsworker/internal/storage"
	"skandan/tamilnewsworker/logger"
	apperrors "skandan/tamilnewsworker/pkg/errors"
)

// KeywordLister provides the registered keywords
type KeywordLister interface {
	List(ctx context.Context) ([]storage.Keyword, error)
}

// ResultWriter persists classification outcomes
type ResultWriter interface {
	Upsert(ctx context.Context, result *storage.SentimentResult) error
}

// BacklogLister finds articles that were never classified
type BacklogLister interface {
	ListWithoutSentiment(ctx context.Context, limit int) ([]storage.Article, error)
}

// Pipeline scores newly ingested articles against every registered keyword
// and writes at most one result row per (article, keyword) pair.
type Pipeline struct {
	keywords   KeywordLister
	results    ResultWriter
	classifier Classifier

	mode         string
	chunkSize    int
	chunkOverlap int
	window       int

	log *logger.Logger
	now func() time.Time
}

// NewPipeline creates the sentiment pipeline from the configuration
func NewPipeline(cfg *config.Config, keywords KeywordLister, results ResultWriter, classifier Classifier) *Pipeline {
	return &Pipeline{
		keywords:     keywords,
		results:      results,
		classifier:   classifier,
		mode:         cfg.SentimentMode,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		window:       cfg.SentenceWindow,
		log:          logger.ForPipeline(),
		now:          time.Now,
	}
}

// AnalyzeArticle runs the per-keyword analysis for one article. Articles
// with no description are skipped outright. A failure on one keyword is
// logged and never blocks the remaining keywords.
func (p *Pipeline) AnalyzeArticle(ctx context.Context, article *storage.Article) error {
	if article.Description == "" {
		return nil
	}

	keywords, err := p.keywords.List(ctx)
	if err != nil {
		return apperrors.NewPersistence(article.WebsiteName, "list keywords", err)
	}

	for _, keyword := range keywords {
		if err := p.analyzeKeyword(ctx, article, keyword); err != nil {
			p.log.Warn().
				Err(err).
				Int64("news_id", article.ID).
				Str("keyword", keyword.Name).
				Msg("Error analyzing keyword")
		}
	}
	return nil
}

// analyzeKeyword classifies the keyword-relevant context of the article and
// upserts the result. No qualifying context means no row and no error.
func (p *Pipeline) analyzeKeyword(ctx context.Context, article *storage.Article, keyword storage.Keyword) error {
	name := strings.TrimSpace(keyword.Name)
	if name == "" {
		return nil
	}

	var result *Result
	var err error
	switch p.mode {
	case config.SentimentModeChunk:
		result, err = p.classifyChunks(ctx, article.Description, name)
	default:
		result, err = p.classifyWindow(ctx, article.Description, name)
	}
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	keywordID := keyword.ID
	row := &storage.SentimentResult{
		NewsID:      article.ID,
		KeywordID:   &keywordID,
		Title:       article.Title,
		WebsiteName: article.WebsiteName,
		Category:    article.Category,
		Label:       result.Label,
		Score:       result.Score,
		Positive:    result.Positive,
		Negative:    result.Negative,
		Neutral:     result.Neutral,
		ProcessedAt: p.now().UTC(),
	}
	if err := p.results.Upsert(ctx, row); err != nil {
		return apperrors.NewPersistence(article.WebsiteName, "upsert sentiment result", err)
	}

	p.log.Debug().
		Int64("news_id", article.ID).
		Str("keyword", name).
		Str("label", result.Label).
		Float64("score", result.Score).
		Msg("Stored sentiment result")
	return nil
}

// classifyWindow scores the sentence window around the first keyword match
func (p *Pipeline) classifyWindow(ctx context.Context, text, keyword string) (*Result, error) {
	focus := ExtractRelevantSentences(text, keyword, p.window)
	if focus == "" {
		return nil, nil
	}

	result, err := p.classifier.Classify(ctx, focus)
	if err != nil {
		return nil, apperrors.NewClassification("", "classify context for "+keyword, err)
	}
	return result, nil
}

// classifyChunks scores every keyword-containing chunk and averages the
// class probabilities; the label is the argmax of the averages
func (p *Pipeline) classifyChunks(ctx context.Context, text, keyword string) (*Result, error) {
	chunks := KeywordChunks(text, keyword, p.chunkSize, p.chunkOverlap)
	if len(chunks) == 0 {
		return nil, nil
	}

	var positive, negative, neutral float64
	for _, chunk := range chunks {
		result, err := p.classifier.Classify(ctx, chunk)
		if err != nil {
			return nil, apperrors.NewClassification("", "classify chunk for "+keyword, err)
		}
		positive += result.Positive
		negative += result.Negative
		neutral += result.Neutral
	}

	n := float64(len(chunks))
	averaged := &Result{
		Positive: positive / n,
		Negative: negative / n,
		Neutral:  neutral / n,
	}
	averaged.Label, averaged.Score = argmax(averaged)
	return averaged, nil
}

func argmax(r *Result) (string, float64) {
	label, score := "positive", r.Positive
	if r.Negative > score {
		label, score = "negative", r.Negative
	}
	if r.Neutral > score {
		label, score = "neutral", r.Neutral
	}
	return label, score
}

// Backfill classifies the titles of articles that have no sentiment rows
// yet and stores one keyword-less result each. Returns how many articles
// were processed.
func (p *Pipeline) Backfill(ctx context.Context, articles BacklogLister, limit int) (int, error) {
	backlog, err := articles.ListWithoutSentiment(ctx, limit)
	if err != nil {
		return 0, apperrors.NewPersistence("", "list unclassified articles", err)
	}
	p.log.Info().Int("articles", len(backlog)).Msg("Backfilling sentiment")

	processed := 0
	for _, article := range backlog {
		result, err := p.classifier.Classify(ctx, article.Title)
		if err != nil {
			p.log.Warn().Err(err).Int64("news_id", article.ID).Msg("Error classifying title")
			continue
		}

		row := &storage.SentimentResult{
			NewsID:      article.ID,
			Title:       article.Title,
			WebsiteName: article.WebsiteName,
			Category:    article.Category,
			Label:       result.Label,
			Score:       result.Score,
			Positive:    result.Positive,
			Negative:    result.Negative,
			Neutral:     result.Neutral,
			ProcessedAt: p.now().UTC(),
		}
		if err := p.results.Upsert(ctx, row); err != nil {
			p.log.Warn().Err(err).Int64("news_id", article.ID).Msg("Error storing backfill result")
			continue
		}
		processed++
	}
	return processed, nil
}
