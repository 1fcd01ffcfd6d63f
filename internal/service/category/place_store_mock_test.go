package category

import (
	"context"
	"sync"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

var _ placeStore = &placeStoreMock{}

type placeStoreMock struct {
	CitiesFunc     func(ctx context.Context) ([]*domain.City, error)
	ModifyCityFunc func(ctx context.Context, key string, mutate func(*domain.City) error) (datasync.Outcome, error)

	calls struct {
		Cities []struct {
			Ctx context.Context
		}
		ModifyCity []struct {
			Ctx context.Context
			Key string
		}
	}
	lockCities     sync.RWMutex
	lockModifyCity sync.RWMutex
}

func (mock *placeStoreMock) Cities(ctx context.Context) ([]*domain.City, error) {
	if mock.CitiesFunc == nil {
		panic("placeStoreMock.CitiesFunc: method is nil but placeStore.Cities was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockCities.Lock()
	mock.calls.Cities = append(mock.calls.Cities, callInfo)
	mock.lockCities.Unlock()
	return mock.CitiesFunc(ctx)
}

func (mock *placeStoreMock) CitiesCalls() []struct {
	Ctx context.Context
} {
	mock.lockCities.RLock()
	calls := mock.calls.Cities
	mock.lockCities.RUnlock()
	return calls
}

func (mock *placeStoreMock) ModifyCity(ctx context.Context, key string, mutate func(*domain.City) error) (datasync.Outcome, error) {
	if mock.ModifyCityFunc == nil {
		panic("placeStoreMock.ModifyCityFunc: method is nil but placeStore.ModifyCity was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Key string
	}{Ctx: ctx, Key: key}
	mock.lockModifyCity.Lock()
	mock.calls.ModifyCity = append(mock.calls.ModifyCity, callInfo)
	mock.lockModifyCity.Unlock()
	return mock.ModifyCityFunc(ctx, key, mutate)
}

func (mock *placeStoreMock) ModifyCityCalls() []struct {
	Ctx context.Context
	Key string
} {
	mock.lockModifyCity.RLock()
	calls := mock.calls.ModifyCity
	mock.lockModifyCity.RUnlock()
	return calls
}
