// Package graph exposes the book service as a GraphQL API.
package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

// Schema is the GraphQL schema served by the API.
const Schema = `
input AddBookInput {
  author: String!
  title: String!
}

type Book {
  author: String
  id: String
  title: String
}

input DeleteBookInput {
  id: String!
}

input EditBookInput {
  author: String!
  id: String!
  title: String!
}

type Mutation {
  addBook(input: AddBookInput!): Book!
  deleteBook(input: DeleteBookInput!): Book!
  editBook(input: EditBookInput!): Book!
}

type Query {
  books: [Book]
}
`

// NewSchema parses Schema against r.
func NewSchema(r *Resolver, l *zap.Logger) (*graphql.Schema, error) {
	return graphql.ParseSchema(Schema, r, graphql.Logger(panicLogger{l: l}))
}

// panicLogger reports panics recovered during query execution.
type panicLogger struct {
	l *zap.Logger
}

func (p panicLogger) LogPanic(ctx context.Context, value interface{}) {
	p.l.Error("Panic during GraphQL execution", zap.Any("panic", value), zap.Stack("stack"))
}
