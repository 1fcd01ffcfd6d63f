package city

import (
	"context"
	"sync"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

var _ cityStore = &cityStoreMock{}

type cityStoreMock struct {
	CityFunc       func(ctx context.Context, key string) (*domain.City, error)
	CitiesFunc     func(ctx context.Context) ([]*domain.City, error)
	CreateCityFunc func(ctx context.Context, city *domain.City) (datasync.Outcome, error)
	ModifyCityFunc func(ctx context.Context, key string, mutate func(*domain.City) error) (datasync.Outcome, error)
	DeleteCityFunc func(ctx context.Context, key string) (datasync.Outcome, error)

	calls struct {
		City       []struct {
			Ctx context.Context
			Key string
		}
		Cities     []struct {
			Ctx context.Context
		}
		CreateCity []struct {
			Ctx  context.Context
			City *domain.City
		}
		ModifyCity []struct {
			Ctx    context.Context
			Key    string
			Mutate func(*domain.City) error
		}
		DeleteCity []struct {
			Ctx context.Context
			Key string
		}
	}
	lockCity       sync.RWMutex
	lockCities     sync.RWMutex
	lockCreateCity sync.RWMutex
	lockModifyCity sync.RWMutex
	lockDeleteCity sync.RWMutex
}

func (mock *cityStoreMock) City(ctx context.Context, key string) (*domain.City, error) {
	if mock.CityFunc == nil {
		panic("cityStoreMock.CityFunc: method is nil but cityStore.City was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Key string
	}{Ctx: ctx, Key: key}
	mock.lockCity.Lock()
	mock.calls.City = append(mock.calls.City, callInfo)
	mock.lockCity.Unlock()
	return mock.CityFunc(ctx, key)
}

func (mock *cityStoreMock) CityCalls() []struct {
	Ctx context.Context
	Key string
} {
	mock.lockCity.RLock()
	calls := mock.calls.City
	mock.lockCity.RUnlock()
	return calls
}

func (mock *cityStoreMock) Cities(ctx context.Context) ([]*domain.City, error) {
	if mock.CitiesFunc == nil {
		panic("cityStoreMock.CitiesFunc: method is nil but cityStore.Cities was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockCities.Lock()
	mock.calls.Cities = append(mock.calls.Cities, callInfo)
	mock.lockCities.Unlock()
	return mock.CitiesFunc(ctx)
}

func (mock *cityStoreMock) CitiesCalls() []struct {
	Ctx context.Context
} {
	mock.lockCities.RLock()
	calls := mock.calls.Cities
	mock.lockCities.RUnlock()
	return calls
}

func (mock *cityStoreMock) CreateCity(ctx context.Context, city *domain.City) (datasync.Outcome, error) {
	if mock.CreateCityFunc == nil {
		panic("cityStoreMock.CreateCityFunc: method is nil but cityStore.CreateCity was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		City *domain.City
	}{Ctx: ctx, City: city}
	mock.lockCreateCity.Lock()
	mock.calls.CreateCity = append(mock.calls.CreateCity, callInfo)
	mock.lockCreateCity.Unlock()
	return mock.CreateCityFunc(ctx, city)
}

func (mock *cityStoreMock) CreateCityCalls() []struct {
	Ctx  context.Context
	City *domain.City
} {
	mock.lockCreateCity.RLock()
	calls := mock.calls.CreateCity
	mock.lockCreateCity.RUnlock()
	return calls
}

func (mock *cityStoreMock) ModifyCity(ctx context.Context, key string, mutate func(*domain.City) error) (datasync.Outcome, error) {
	if mock.ModifyCityFunc == nil {
		panic("cityStoreMock.ModifyCityFunc: method is nil but cityStore.ModifyCity was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Key    string
		Mutate func(*domain.City) error
	}{Ctx: ctx, Key: key, Mutate: mutate}
	mock.lockModifyCity.Lock()
	mock.calls.ModifyCity = append(mock.calls.ModifyCity, callInfo)
	mock.lockModifyCity.Unlock()
	return mock.ModifyCityFunc(ctx, key, mutate)
}

func (mock *cityStoreMock) ModifyCityCalls() []struct {
	Ctx    context.Context
	Key    string
	Mutate func(*domain.City) error
} {
	mock.lockModifyCity.RLock()
	calls := mock.calls.ModifyCity
	mock.lockModifyCity.RUnlock()
	return calls
}

func (mock *cityStoreMock) DeleteCity(ctx context.Context, key string) (datasync.Outcome, error) {
	if mock.DeleteCityFunc == nil {
		panic("cityStoreMock.DeleteCityFunc: method is nil but cityStore.DeleteCity was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Key string
	}{Ctx: ctx, Key: key}
	mock.lockDeleteCity.Lock()
	mock.calls.DeleteCity = append(mock.calls.DeleteCity, callInfo)
	mock.lockDeleteCity.Unlock()
	return mock.DeleteCityFunc(ctx, key)
}

func (mock *cityStoreMock) DeleteCityCalls() []struct {
	Ctx context.Context
	Key string
} {
	mock.lockDeleteCity.RLock()
	calls := mock.calls.DeleteCity
	mock.lockDeleteCity.RUnlock()
	return calls
}
