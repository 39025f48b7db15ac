package graph

import (
	"net/http"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"bookgraph/internal/httpx"
)

// Methods lists the HTTP methods accepted by the handler returned from NewHandler.
var Methods = []string{http.MethodPost}

// NewHandler serves GraphQL requests (POST, JSON body) for schema.
func NewHandler(schema *graphql.Schema) http.Handler {
	return httpx.MethodMux(map[string]http.Handler{
		http.MethodPost: &relay.Handler{Schema: schema},
	})
}
