package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"hitbuilder/internal/hit"
	"hitbuilder/internal/server/core/model"
	"hitbuilder/internal/server/core/repositories"
)

type Repo interface {
	Get(ctx context.Context, id string) (model.State, error)
	Save(ctx context.Context, id string, state model.State) error
	Delete(ctx context.Context, id string) error
	Close() error
	Ping(ctx context.Context) error
}

// HitClient проверяет и отправляет хиты в Measurement Protocol.
type HitClient interface {
	Validate(ctx context.Context, payload string) (model.ValidationResult, error)
	Send(ctx context.Context, payload string) error
}

// PropertySource список ресурсов пользователя по его токену доступа.
type PropertySource interface {
	List(ctx context.Context, token string) ([]model.Property, error)
}

type Application struct {
	repo       Repo
	client     HitClient
	properties PropertySource
	newID      func() string
	locks      sync.Map
}

func NewApplication(repo Repo, client HitClient, properties PropertySource) *Application {
	return &Application{
		repo:       repo,
		client:     client,
		properties: properties,
		newID:      uuid.NewString,
	}
}

var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream unavailable")
)

func (a *Application) lock(id string) *sync.Mutex {
	mu, _ := a.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex) //nolint:forcetypeassert
	m.Lock()

	return m
}

// forget убирает мьютекс сессии, если он не был заменен другим.
// Вызывается под блокировкой, когда сессии больше нет.
func (a *Application) forget(id string, mu *sync.Mutex) {
	a.locks.CompareAndDelete(id, mu)
}

func (a *Application) load(ctx context.Context, id string) (model.HitModel, error) {
	state, err := a.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return model.HitModel{}, fmt.Errorf("hit session %s not found: %w", id, ErrNotFound)
		}
		return model.HitModel{}, fmt.Errorf("failed to get hit session: %w", err)
	}

	return model.FromState(state), nil
}

// mutate загружает модель, применяет fn и сохраняет результат под блокировкой сессии.
func (a *Application) mutate(ctx context.Context, id string,
	fn func(m model.HitModel) (model.HitModel, error)) (model.Snapshot, error) {
	mu := a.lock(id)
	defer mu.Unlock()

	m, err := a.load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			a.forget(id, mu)
		}
		return model.Snapshot{}, err
	}

	m, err = fn(m)
	if err != nil {
		return model.Snapshot{}, err
	}

	if err := a.repo.Save(ctx, id, m.State()); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to save hit session: %w", err)
	}

	return m.Snapshot(id), nil
}

// CreateHit создает сессию из строки запроса. Пустой запрос дает хит по умолчанию.
func (a *Application) CreateHit(ctx context.Context, query string) (model.Snapshot, error) {
	id := a.newID()
	m := model.New(hit.InitialHit(query))

	if err := a.repo.Save(ctx, id, m.State()); err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to save hit session: %w", err)
	}

	return m.Snapshot(id), nil
}

func (a *Application) GetHit(ctx context.Context, id string) (model.Snapshot, error) {
	m, err := a.load(ctx, id)
	if err != nil {
		return model.Snapshot{}, err
	}

	return m.Snapshot(id), nil
}

func (a *Application) DeleteHit(ctx context.Context, id string) error {
	mu := a.lock(id)
	defer mu.Unlock()

	if err := a.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			a.forget(id, mu)
			return fmt.Errorf("hit session %s not found: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete hit session: %w", err)
	}

	a.forget(id, mu)

	return nil
}

func (a *Application) ReplacePayload(ctx context.Context, id, payload string) (model.Snapshot, error) {
	return a.mutate(ctx, id, func(m model.HitModel) (model.HitModel, error) {
		return m.ReplaceFromString(payload), nil
	})
}

func (a *Application) AddParameter(ctx context.Context, id, name string) (model.Snapshot, error) {
	return a.mutate(ctx, id, func(m model.HitModel) (model.HitModel, error) {
		return m.AddNamedParameter(strings.TrimSpace(name)), nil
	})
}

// RemoveParameter удаляет необязательный параметр.
// Для обязательных и неизвестных идентификаторов вызов ничего не меняет.
func (a *Application) RemoveParameter(ctx context.Context, id string, paramID int64) (model.Snapshot, error) {
	return a.mutate(ctx, id, func(m model.HitModel) (model.HitModel, error) {
		return m.RemoveParameter(paramID), nil
	})
}

func (a *Application) UpdateParameter(ctx context.Context, id string, paramID int64,
	patch model.Patch) (model.Snapshot, error) {
	if patch.Name == nil && patch.Value == nil {
		return model.Snapshot{}, fmt.Errorf("empty patch, error: %w", ErrBadRequest)
	}

	return a.mutate(ctx, id, func(m model.HitModel) (model.HitModel, error) {
		return m.UpdateParameter(paramID, patch), nil
	})
}

// GenerateClientID заполняет cid случайным UUID.
func (a *Application) GenerateClientID(ctx context.Context, id string) (model.Snapshot, error) {
	return a.mutate(ctx, id, func(m model.HitModel) (model.HitModel, error) {
		cid, ok := m.ParameterByName(hit.ParamClientID)
		if !ok {
			return m, fmt.Errorf("client id parameter is missing: %w", ErrConflict)
		}

		value := uuid.NewString()

		return m.UpdateParameter(cid.ID, model.Patch{Value: &value}), nil
	})
}

// ValidateHit проверяет текущий хит сессии.
//
// Блокировка сессии не удерживается во время запроса, поэтому параметры можно
// менять параллельно. Ответ для хита, который успел измениться, отбрасывается.
func (a *Application) ValidateHit(ctx context.Context, id string) (model.Snapshot, error) {
	var payload string

	_, err := a.mutate(ctx, id, func(m model.HitModel) (model.HitModel, error) {
		m, payload = m.BeginValidation()
		return m, nil
	})
	if err != nil {
		return model.Snapshot{}, err
	}

	result, err := a.client.Validate(ctx, payload)
	if err != nil {
		_, abortErr := a.mutate(context.WithoutCancel(ctx), id, func(m model.HitModel) (model.HitModel, error) {
			if m.Hit() != payload {
				return m, nil
			}
			return m.AbortValidation(), nil
		})

		return model.Snapshot{}, errors.Join(
			fmt.Errorf("could not reach validation service: %w: %w", ErrUpstream, err),
			abortErr,
		)
	}

	return a.mutate(ctx, id, func(m model.HitModel) (model.HitModel, error) {
		next, _ := m.ApplyValidation(result)
		return next, nil
	})
}

// SendHit отправляет проверенный хит.
func (a *Application) SendHit(ctx context.Context, id string) (model.Snapshot, error) {
	var payload string

	_, err := a.mutate(ctx, id, func(m model.HitModel) (model.HitModel, error) {
		next, p, err := m.BeginSend()
		if err != nil {
			return m, fmt.Errorf("can't send hit: %w: %w", ErrConflict, err)
		}

		payload = p

		return next, nil
	})
	if err != nil {
		return model.Snapshot{}, err
	}

	sendErr := a.client.Send(ctx, payload)

	snapshot, err := a.mutate(context.WithoutCancel(ctx), id, func(m model.HitModel) (model.HitModel, error) {
		return m.FinishSend(payload, sendErr == nil), nil
	})
	if err != nil {
		return model.Snapshot{}, err
	}

	if sendErr != nil {
		return snapshot, fmt.Errorf("could not send hit: %w: %w", ErrUpstream, sendErr)
	}

	return snapshot, nil
}

// Properties возвращает ресурсы пользователя. Пустой токен означает, что пользователь не авторизован.
func (a *Application) Properties(ctx context.Context, token string) ([]model.Property, error) {
	if token == "" {
		return nil, fmt.Errorf("no access token: %w", ErrUnauthorized)
	}

	if a.properties == nil {
		return []model.Property{}, nil
	}

	properties, err := a.properties.List(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	return properties, nil
}

func (a *Application) HitTypes() []string {
	return append([]string(nil), hit.Types...)
}

func (a *Application) Ping(ctx context.Context) error {
	err := a.repo.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping: %w", err)
	}

	return nil
}
