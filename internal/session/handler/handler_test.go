package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"basketwise/internal/bundle"
	catalogsvc "basketwise/internal/catalog/service"
	catalogstore "basketwise/internal/catalog/store"
	directorysvc "basketwise/internal/directory/service"
	directorystore "basketwise/internal/directory/store"
	"basketwise/internal/geo"
	"basketwise/internal/prefs"
	"basketwise/internal/session"
	"basketwise/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)

	dir := directorystore.NewInMemory()
	directorystore.SeedDirectory(dir)
	dirSvc := directorysvc.New(dir, dir, geo.Static{}, "tricity", logger)

	cat := catalogstore.NewInMemory()
	catalogstore.SeedCatalog(cat)
	catSvc := catalogsvc.New(cat, cat, logger)

	matcher := bundle.NewMatcher(bundle.DefaultDefinitions(), nil)
	sessionSvc := session.New(dirSvc, catSvc, matcher, prefs.NewMemory(), "tricity", nil, logger)

	s.router = chi.NewRouter()
	New(sessionSvc, nil, logger).Register(s.router)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) createSession(region string) cartResponse {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/sessions",
		map[string]string{"region": region})
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	var out cartResponse
	testutil.DecodeJSON(s.T(), rr, &out)
	return out
}

func (s *HandlerSuite) TestCreateSession() {
	out := s.createSession("tricity")
	s.Equal("tricity", out.Region)
	s.Equal("All", out.SubArea)
	s.Zero(out.ItemCount)
	s.Len(out.StoreTotals, 4)
}

func (s *HandlerSuite) TestCreateSessionUnknownRegion() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/sessions",
		map[string]string{"region": "atlantis"})
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusNotFound, rr.Code)
}

func (s *HandlerSuite) TestCartFlow() {
	sess := s.createSession("tricity")
	base := "/sessions/" + sess.SessionID

	atta := catalogstore.ProductAtta.String()

	s.Run("add item", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, base+"/cart/items",
			map[string]string{"product_id": atta})
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusNoContent, rr.Code, rr.Body.String())
	})

	s.Run("set quantity", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut,
			fmt.Sprintf("%s/cart/items/%s", base, atta),
			map[string]int{"quantity": 2})
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusNoContent, rr.Code)
	})

	s.Run("cart reflects totals", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, base+"/cart")
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code)

		var cart cartResponse
		testutil.DecodeJSON(s.T(), rr, &cart)
		s.Equal(2, cart.ItemCount)
		s.Require().Len(cart.Items, 1)
		s.Equal(atta, cart.Items[0].ProductID)
		s.Equal(int64(47800), int64(cart.BestTotal))
		s.Equal(int64(49000), int64(cart.WorstTotal))
		s.Equal(int64(1200), int64(cart.Savings))
	})

	s.Run("remove item", func() {
		req := testutil.NewRequest(s.T(), http.MethodDelete,
			fmt.Sprintf("%s/cart/items/%s", base, atta))
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		req = testutil.NewRequest(s.T(), http.MethodGet, base+"/cart")
		rr = testutil.DoRequest(s.router, req)

		var cart cartResponse
		testutil.DecodeJSON(s.T(), rr, &cart)
		s.Zero(cart.ItemCount)
	})

	s.Run("unknown product rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, base+"/cart/items",
			map[string]string{"product_id": "b5f9c011-0000-0000-0000-000000000000"})
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusNotFound, rr.Code)
	})

	s.Run("malformed product id rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, base+"/cart/items",
			map[string]string{"product_id": "not-a-uuid"})
		rr := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlerSuite) TestSelectRegionDiscardsCart() {
	sess := s.createSession("tricity")
	base := "/sessions/" + sess.SessionID

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, base+"/cart/items",
		map[string]string{"product_id": catalogstore.ProductMilk.String()})
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusNoContent, rr.Code)

	req = testutil.NewJSONRequest(s.T(), http.MethodPut, base+"/region",
		map[string]string{"region": "delhi-ncr"})
	rr = testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusNoContent, rr.Code)

	req = testutil.NewRequest(s.T(), http.MethodGet, base+"/cart")
	rr = testutil.DoRequest(s.router, req)

	var cart cartResponse
	testutil.DecodeJSON(s.T(), rr, &cart)
	s.Equal("delhi-ncr", cart.Region)
	s.Zero(cart.ItemCount)
}

func (s *HandlerSuite) TestSubArea() {
	sess := s.createSession("tricity")
	base := "/sessions/" + sess.SessionID

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, base+"/subarea",
		map[string]string{"sub_area": "Sector 17"})
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusNoContent, rr.Code)

	req = testutil.NewRequest(s.T(), http.MethodGet, base+"/cart")
	rr = testutil.DoRequest(s.router, req)

	var cart cartResponse
	testutil.DecodeJSON(s.T(), rr, &cart)
	s.Equal("Sector 17", cart.SubArea)
	s.Require().Len(cart.StoreTotals, 1)
	s.Equal("GreenBasket Sector 17", cart.StoreTotals[0].Name)
}

func (s *HandlerSuite) TestAddBundle() {
	sess := s.createSession("tricity")
	base := "/sessions/" + sess.SessionID

	def := bundle.DefaultDefinitions()[0]
	req := testutil.NewJSONRequest(s.T(), http.MethodPost,
		base+"/bundles/"+def.ID.String(), nil)
	rr := testutil.DoRequest(s.router, req)
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var cart cartResponse
	testutil.DecodeJSON(s.T(), rr, &cart)
	s.Len(cart.Items, len(def.Keywords))
	for _, item := range cart.Items {
		s.NotEmpty(item.PinnedTo, "bundle lines pin their matched store")
	}
}

func (s *HandlerSuite) TestAlerts() {
	sess := s.createSession("tricity")
	base := "/sessions/" + sess.SessionID
	milk := catalogstore.ProductMilk.String()

	s.Run("set and list", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, base+"/alerts/"+milk,
			map[string]int64{"target_price": 999999})
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		req = testutil.NewRequest(s.T(), http.MethodGet, base+"/alerts")
		rr = testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code)

		var alerts []alertResponse
		testutil.DecodeJSON(s.T(), rr, &alerts)
		s.Require().Len(alerts, 1)
		s.Equal(milk, alerts[0].ProductID)
	})

	s.Run("triggered endpoint lists the fired alert", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, base+"/alerts/triggered")
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code)

		var fired []firedAlertResponse
		testutil.DecodeJSON(s.T(), rr, &fired)
		s.Require().Len(fired, 1)
		s.Equal(milk, fired[0].ProductID)
		s.Positive(int64(fired[0].CurrentPrice))
		s.NotEmpty(fired[0].StoreID)
	})

	s.Run("fired alert appears in the cart view", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, base+"/cart")
		rr := testutil.DoRequest(s.router, req)

		var cart cartResponse
		testutil.DecodeJSON(s.T(), rr, &cart)
		s.Require().Len(cart.FiredAlerts, 1)
		s.Equal(milk, cart.FiredAlerts[0].ProductID)
	})

	s.Run("delete silences", func() {
		req := testutil.NewRequest(s.T(), http.MethodDelete, base+"/alerts/"+milk)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		req = testutil.NewRequest(s.T(), http.MethodGet, base+"/alerts")
		rr = testutil.DoRequest(s.router, req)

		var alerts []alertResponse
		testutil.DecodeJSON(s.T(), rr, &alerts)
		s.Empty(alerts)
	})
}

func (s *HandlerSuite) TestSavedProducts() {
	sess := s.createSession("tricity")
	base := "/sessions/" + sess.SessionID
	milk := catalogstore.ProductMilk.String()

	s.Run("save and list", func() {
		req := testutil.NewRequest(s.T(), http.MethodPut, base+"/saved/"+milk)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusNoContent, rr.Code, rr.Body.String())

		req = testutil.NewRequest(s.T(), http.MethodGet, base+"/saved")
		rr = testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusOK, rr.Code)

		var saved savedResponse
		testutil.DecodeJSON(s.T(), rr, &saved)
		s.Equal([]string{milk}, saved.ProductIDs)
	})

	s.Run("unsave", func() {
		req := testutil.NewRequest(s.T(), http.MethodDelete, base+"/saved/"+milk)
		rr := testutil.DoRequest(s.router, req)
		s.Require().Equal(http.StatusNoContent, rr.Code)

		req = testutil.NewRequest(s.T(), http.MethodGet, base+"/saved")
		rr = testutil.DoRequest(s.router, req)

		var saved savedResponse
		testutil.DecodeJSON(s.T(), rr, &saved)
		s.Empty(saved.ProductIDs)
	})
}

func (s *HandlerSuite) TestUnknownSession() {
	req := testutil.NewRequest(s.T(), http.MethodGet,
		"/sessions/b5f9c011-0000-0000-0000-000000000000/cart")
	rr := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusNotFound, rr.Code)
}
