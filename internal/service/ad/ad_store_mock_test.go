package ad

import (
	"context"
	"sync"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

var _ adStore = &adStoreMock{}

type adStoreMock struct {
	AdsFunc      func(ctx context.Context) ([]domain.Ad, error)
	CreateAdFunc func(ctx context.Context, ad domain.Ad) (datasync.Outcome, error)
	PutAdFunc    func(ctx context.Context, ad domain.Ad) (datasync.Outcome, error)
	DeleteAdFunc func(ctx context.Context, id string) (datasync.Outcome, error)

	calls struct {
		Ads      []struct {
			Ctx context.Context
		}
		CreateAd []struct {
			Ctx context.Context
			Ad  domain.Ad
		}
		PutAd    []struct {
			Ctx context.Context
			Ad  domain.Ad
		}
		DeleteAd []struct {
			Ctx context.Context
			Id  string
		}
	}
	lockAds      sync.RWMutex
	lockCreateAd sync.RWMutex
	lockPutAd    sync.RWMutex
	lockDeleteAd sync.RWMutex
}

func (mock *adStoreMock) Ads(ctx context.Context) ([]domain.Ad, error) {
	if mock.AdsFunc == nil {
		panic("adStoreMock.AdsFunc: method is nil but adStore.Ads was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockAds.Lock()
	mock.calls.Ads = append(mock.calls.Ads, callInfo)
	mock.lockAds.Unlock()
	return mock.AdsFunc(ctx)
}

func (mock *adStoreMock) AdsCalls() []struct {
	Ctx context.Context
} {
	mock.lockAds.RLock()
	calls := mock.calls.Ads
	mock.lockAds.RUnlock()
	return calls
}

func (mock *adStoreMock) CreateAd(ctx context.Context, ad domain.Ad) (datasync.Outcome, error) {
	if mock.CreateAdFunc == nil {
		panic("adStoreMock.CreateAdFunc: method is nil but adStore.CreateAd was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ad  domain.Ad
	}{Ctx: ctx, Ad: ad}
	mock.lockCreateAd.Lock()
	mock.calls.CreateAd = append(mock.calls.CreateAd, callInfo)
	mock.lockCreateAd.Unlock()
	return mock.CreateAdFunc(ctx, ad)
}

func (mock *adStoreMock) CreateAdCalls() []struct {
	Ctx context.Context
	Ad  domain.Ad
} {
	mock.lockCreateAd.RLock()
	calls := mock.calls.CreateAd
	mock.lockCreateAd.RUnlock()
	return calls
}

func (mock *adStoreMock) PutAd(ctx context.Context, ad domain.Ad) (datasync.Outcome, error) {
	if mock.PutAdFunc == nil {
		panic("adStoreMock.PutAdFunc: method is nil but adStore.PutAd was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ad  domain.Ad
	}{Ctx: ctx, Ad: ad}
	mock.lockPutAd.Lock()
	mock.calls.PutAd = append(mock.calls.PutAd, callInfo)
	mock.lockPutAd.Unlock()
	return mock.PutAdFunc(ctx, ad)
}

func (mock *adStoreMock) PutAdCalls() []struct {
	Ctx context.Context
	Ad  domain.Ad
} {
	mock.lockPutAd.RLock()
	calls := mock.calls.PutAd
	mock.lockPutAd.RUnlock()
	return calls
}

func (mock *adStoreMock) DeleteAd(ctx context.Context, id string) (datasync.Outcome, error) {
	if mock.DeleteAdFunc == nil {
		panic("adStoreMock.DeleteAdFunc: method is nil but adStore.DeleteAd was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Id  string
	}{Ctx: ctx, Id: id}
	mock.lockDeleteAd.Lock()
	mock.calls.DeleteAd = append(mock.calls.DeleteAd, callInfo)
	mock.lockDeleteAd.Unlock()
	return mock.DeleteAdFunc(ctx, id)
}

func (mock *adStoreMock) DeleteAdCalls() []struct {
	Ctx context.Context
	Id  string
} {
	mock.lockDeleteAd.RLock()
	calls := mock.calls.DeleteAd
	mock.lockDeleteAd.RUnlock()
	return calls
}
