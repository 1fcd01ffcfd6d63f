package place

import (
	"context"
	"sync"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

var _ placeStore = &placeStoreMock{}

type placeStoreMock struct {
	CityFunc        func(ctx context.Context, key string) (*domain.City, error)
	PutPlaceFunc    func(ctx context.Context, cityKey string, p domain.Place) (datasync.Outcome, error)
	ModifyCityFunc  func(ctx context.Context, key string, mutate func(*domain.City) error) (datasync.Outcome, error)
	DeletePlaceFunc func(ctx context.Context, cityKey string, placeID string) (datasync.Outcome, error)

	calls struct {
		City        []struct {
			Ctx context.Context
			Key string
		}
		PutPlace    []struct {
			Ctx     context.Context
			CityKey string
			P       domain.Place
		}
		ModifyCity []struct {
			Ctx context.Context
			Key string
		}
		DeletePlace []struct {
			Ctx     context.Context
			CityKey string
			PlaceID string
		}
	}
	lockCity        sync.RWMutex
	lockPutPlace    sync.RWMutex
	lockModifyCity  sync.RWMutex
	lockDeletePlace sync.RWMutex
}

func (mock *placeStoreMock) City(ctx context.Context, key string) (*domain.City, error) {
	if mock.CityFunc == nil {
		panic("placeStoreMock.CityFunc: method is nil but placeStore.City was just called")
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

func (mock *placeStoreMock) CityCalls() []struct {
	Ctx context.Context
	Key string
} {
	mock.lockCity.RLock()
	calls := mock.calls.City
	mock.lockCity.RUnlock()
	return calls
}

func (mock *placeStoreMock) PutPlace(ctx context.Context, cityKey string, p domain.Place) (datasync.Outcome, error) {
	if mock.PutPlaceFunc == nil {
		panic("placeStoreMock.PutPlaceFunc: method is nil but placeStore.PutPlace was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		CityKey string
		P       domain.Place
	}{Ctx: ctx, CityKey: cityKey, P: p}
	mock.lockPutPlace.Lock()
	mock.calls.PutPlace = append(mock.calls.PutPlace, callInfo)
	mock.lockPutPlace.Unlock()
	return mock.PutPlaceFunc(ctx, cityKey, p)
}

func (mock *placeStoreMock) PutPlaceCalls() []struct {
	Ctx     context.Context
	CityKey string
	P       domain.Place
} {
	mock.lockPutPlace.RLock()
	calls := mock.calls.PutPlace
	mock.lockPutPlace.RUnlock()
	return calls
}

func (mock *placeStoreMock) DeletePlace(ctx context.Context, cityKey string, placeID string) (datasync.Outcome, error) {
	if mock.DeletePlaceFunc == nil {
		panic("placeStoreMock.DeletePlaceFunc: method is nil but placeStore.DeletePlace was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		CityKey string
		PlaceID string
	}{Ctx: ctx, CityKey: cityKey, PlaceID: placeID}
	mock.lockDeletePlace.Lock()
	mock.calls.DeletePlace = append(mock.calls.DeletePlace, callInfo)
	mock.lockDeletePlace.Unlock()
	return mock.DeletePlaceFunc(ctx, cityKey, placeID)
}

func (mock *placeStoreMock) DeletePlaceCalls() []struct {
	Ctx     context.Context
	CityKey string
	PlaceID string
} {
	mock.lockDeletePlace.RLock()
	calls := mock.calls.DeletePlace
	mock.lockDeletePlace.RUnlock()
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
