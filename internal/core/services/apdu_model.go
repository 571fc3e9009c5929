package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pos-nfc-api/internal/classifier"
	"pos-nfc-api/internal/core/domain"
	"pos-nfc-api/internal/core/ports/output"
	"pos-nfc-api/internal/metrics"
)

// TrainOptions overrides the configured forest parameters for one run.
// Zero values keep the defaults.
type TrainOptions struct {
	Name     string
	Trees    int
	MaxDepth int
	Seed     *int64
}

type loadedModel struct {
	id    uuid.UUID
	model *classifier.Model
}

// APDUModelService trains, registers and serves the APDU success
// classifier.
type APDUModelService struct {
	models     ports.APDUModelRepository
	logs       ports.APDULogRepository
	store      ports.ArtifactStore
	events     ports.EventPublisher
	metrics    *metrics.Metrics
	params     classifier.ForestParams
	minSamples int
	now        func() time.Time

	mu     sync.RWMutex
	loaded *loadedModel
}

func NewAPDUModelService(
	models ports.APDUModelRepository,
	logs ports.APDULogRepository,
	store ports.ArtifactStore,
	events ports.EventPublisher,
	m *metrics.Metrics,
	params classifier.ForestParams,
	minSamples int,
) *APDUModelService {
	if events == nil {
		events = noopPublisher{}
	}
	if minSamples < 2 {
		minSamples = 2
	}
	return &APDUModelService{
		models:     models,
		logs:       logs,
		store:      store,
		events:     events,
		metrics:    m,
		params:     params,
		minSamples: minSamples,
		now:        time.Now,
	}
}

func (s *APDUModelService) forestParams(opts TrainOptions) classifier.ForestParams {
	p := s.params
	if opts.Trees > 0 {
		p.Trees = opts.Trees
	}
	if opts.MaxDepth > 0 {
		p.MaxDepth = opts.MaxDepth
	}
	if opts.Seed != nil {
		p.Seed = *opts.Seed
	}
	if p.Trees <= 0 {
		p.Trees = 100
	}
	return p
}

// loadTrainingSet reads every logged exchange as (combo, success).
func (s *APDUModelService) loadTrainingSet(ctx context.Context) ([]string, []bool, error) {
	var docs []string
	var labels []bool
	err := s.logs.All(ctx, func(l *domain.APDULog) error {
		docs = append(docs, l.Combo())
		labels = append(labels, l.Success)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load apdu logs: %w", err)
	}

	if len(docs) < s.minSamples {
		return nil, nil, fmt.Errorf("%w: have %d samples, need %d", domain.ErrInsufficientTrainingData, len(docs), s.minSamples)
	}
	return docs, labels, nil
}

// Evaluate fits a model without registering it.
func (s *APDUModelService) Evaluate(ctx context.Context, opts TrainOptions) (classifier.Report, error) {
	docs, labels, err := s.loadTrainingSet(ctx)
	if err != nil {
		return classifier.Report{}, err
	}

	_, report, err := classifier.Train(ctx, docs, labels, s.forestParams(opts))
	if errors.Is(err, classifier.ErrNotEnoughData) {
		return classifier.Report{}, domain.ErrInsufficientTrainingData
	}
	return report, err
}

// Train fits a model on every logged exchange, stores its artifact and
// makes it the default. A run that fails after registration, including
// failing to become the default, is kept as FAILED.
func (s *APDUModelService) Train(ctx context.Context, opts TrainOptions) (*domain.APDUModel, error) {
	docs, labels, err := s.loadTrainingSet(ctx)
	if err != nil {
		return nil, err
	}

	params := s.forestParams(opts)
	record, err := domain.NewAPDUModel(opts.Name, params.Trees, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.models.Create(ctx, record); err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{"model_id": record.ID, "model_name": record.Name})
	logger.WithField("samples", len(docs)).Info("apdu model training started")

	model, report, err := classifier.Train(ctx, docs, labels, params)
	if err != nil {
		if errors.Is(err, classifier.ErrNotEnoughData) {
			err = domain.ErrInsufficientTrainingData
		}
		return nil, s.fail(ctx, record, err)
	}

	data, err := model.Marshal()
	if err != nil {
		return nil, s.fail(ctx, record, fmt.Errorf("encode model: %w", err))
	}

	uri, err := s.store.Put(ctx, record.Name+".json", data)
	if err != nil {
		return nil, s.fail(ctx, record, fmt.Errorf("store model artifact: %w", err))
	}

	record.MarkReady(uri, report.Samples, report.OOBAccuracy, s.now().UTC())
	if err := s.models.Update(ctx, record); err != nil {
		return nil, s.fail(ctx, record, err)
	}
	if err := s.models.SetDefault(ctx, record.ID); err != nil {
		return nil, s.fail(ctx, record, fmt.Errorf("set default model: %w", err))
	}
	record.IsDefault = true

	s.mu.Lock()
	s.loaded = &loadedModel{id: record.ID, model: model}
	s.mu.Unlock()

	s.metrics.ModelTrained(string(domain.ModelStatusReady))
	logger.WithFields(log.Fields{
		"uri":      uri,
		"accuracy": report.OOBAccuracy,
		"features": report.Features,
	}).Info("apdu model training finished")

	publish(ctx, s.events, ports.SubjectModelTrained, ModelTrainedEvent{
		ID:          record.ID,
		Name:        record.Name,
		URI:         record.URI,
		SampleCount: record.SampleCount,
		Accuracy:    record.Accuracy,
	})

	return record, nil
}

// fail marks the run FAILED and returns cause. The status update outlives
// a cancelled request context.
func (s *APDUModelService) fail(ctx context.Context, record *domain.APDUModel, cause error) error {
	record.MarkFailed(cause, s.now().UTC())
	if err := s.models.Update(context.WithoutCancel(ctx), record); err != nil {
		log.WithError(err).WithField("model_id", record.ID).Error("mark apdu model failed")
	}
	s.metrics.ModelTrained(string(domain.ModelStatusFailed))
	log.WithError(cause).WithField("model_id", record.ID).Warn("apdu model training failed")
	return cause
}

func (s *APDUModelService) Get(ctx context.Context, id uuid.UUID) (*domain.APDUModel, error) {
	return s.models.GetByID(ctx, id)
}

const (
	DefaultModelPageSize = 20
	MaxModelPageSize     = 100
)

func (s *APDUModelService) List(ctx context.Context, limit, offset int) (Page[*domain.APDUModel], error) {
	limit, offset = clampPage(limit, offset, DefaultModelPageSize, MaxModelPageSize)

	models, total, err := s.models.List(ctx, limit, offset)
	if err != nil {
		return Page[*domain.APDUModel]{}, err
	}
	return Page[*domain.APDUModel]{Items: models, Total: total, Limit: limit, Offset: offset}, nil
}

// SetDefault promotes a READY model.
func (s *APDUModelService) SetDefault(ctx context.Context, id uuid.UUID) (*domain.APDUModel, error) {
	record, err := s.models.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != domain.ModelStatusReady {
		return nil, domain.ErrModelNotReady
	}

	if err := s.models.SetDefault(ctx, id); err != nil {
		return nil, err
	}
	record.IsDefault = true
	return record, nil
}

// Predict scores one exchange with the default model.
func (s *APDUModelService) Predict(ctx context.Context, command, response string) (*domain.Prediction, error) {
	cmd, err := domain.NormalizeAPDU(command)
	if err != nil || cmd == "" {
		return nil, domain.ErrInvalidAPDU
	}
	rsp, err := domain.NormalizeAPDU(response)
	if err != nil {
		return nil, domain.ErrInvalidResponse
	}

	loaded, err := s.defaultModel(ctx)
	if err != nil {
		return nil, err
	}

	p := loaded.model.Predict(domain.ComboText(cmd, rsp))
	return &domain.Prediction{
		ModelID:            loaded.id,
		SuccessProbability: p,
		PredictedSuccess:   p >= 0.5,
	}, nil
}

// defaultModel returns the in-memory default model, reloading its
// artifact when another version became default.
func (s *APDUModelService) defaultModel(ctx context.Context) (*loadedModel, error) {
	record, err := s.models.GetDefault(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	cur := s.loaded
	s.mu.RUnlock()
	if cur != nil && cur.id == record.ID {
		return cur, nil
	}

	data, err := s.store.Get(ctx, record.URI)
	if err != nil {
		return nil, fmt.Errorf("load model artifact %s: %w", record.URI, err)
	}
	model, err := classifier.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	loaded := &loadedModel{id: record.ID, model: model}
	s.mu.Lock()
	s.loaded = loaded
	s.mu.Unlock()

	log.WithField("model_id", record.ID).Info("apdu model loaded")
	return loaded, nil
}
