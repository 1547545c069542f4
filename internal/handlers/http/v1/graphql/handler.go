package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/internal/service"
)

type gqlHandler struct {
	svc *service.Service
	log logrus.FieldLogger

	schema graphql.Schema
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func New(svc *service.Service, log logrus.FieldLogger) (*gqlHandler, error) {
	gh := &gqlHandler{
		svc: svc,
		log: log.WithField("source", "graphql"),
	}

	if err := gh.initSchema(); err != nil {
		return nil, err
	}

	return gh, nil
}

func (gh *gqlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := request{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gh.log.WithError(err).Debug("undecodable graphql request")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}

	res := graphql.Do(graphql.Params{
		Context:        r.Context(),
		Schema:         gh.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
	})
	if res.HasErrors() {
		gh.log.WithField("errors", res.Errors).Debug("graphql query failed")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		gh.log.WithError(err).Warn("graphql response not written")
	}
}
