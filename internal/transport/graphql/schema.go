package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
	"medmcq/internal/app"
	"medmcq/internal/domain"
)

type resolver struct {
	svc app.Services
	log *zap.Logger
}

// NewSchema builds the query and mutation roots over svc.
func NewSchema(svc app.Services, log *zap.Logger) (graphql.Schema, error) {
	r := &resolver{svc: svc, log: log}
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"questions": &graphql.Field{
				Type: graphql.NewList(questionType),
				Args: graphql.FieldConfigArgument{
					"filter": &graphql.ArgumentConfig{Type: questionFilterInput},
				},
				Resolve: r.wrap(r.questions),
			},
			"question": &graphql.Field{
				Type: questionType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.wrap(r.question),
			},
			"semesters": &graphql.Field{
				Type:    graphql.NewList(semesterViewType),
				Resolve: r.wrap(r.semesters),
			},
			"user": &graphql.Field{
				Type:    userType,
				Resolve: r.wrap(r.user),
			},
		},
	})
	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"voteTag":       r.voteField(domain.MetadataTag),
			"voteSpecialty": r.voteField(domain.MetadataSpecialty),
			"suggestTag": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"tagName":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"questionId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.wrap(r.suggestTag),
			},
		},
	})
	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

// kindError exposes the outcome kind as extensions.type.
type kindError struct {
	kind domain.Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Extensions() map[string]interface{} {
	return map[string]interface{}{"type": string(e.kind)}
}

func (r *resolver) wrap(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		out, err := fn(p)
		if err == nil {
			return out, nil
		}
		kind := domain.KindOf(err)
		msg := err.Error()
		if kind == domain.KindInternal {
			r.log.Error("graphql resolver failed", zap.String("field", p.Info.FieldName), zap.Error(err))
			msg = "Internal server error"
		}
		return nil, &kindError{kind: kind, msg: msg}
	}
}

func viewer(ctx context.Context) *domain.Viewer {
	return app.ViewerFrom(ctx)
}

func (r *resolver) questions(p graphql.ResolveParams) (interface{}, error) {
	filter, _ := p.Args["filter"].(map[string]interface{})
	sel, err := domain.ResolveSelection(selectionParams(filter))
	if err != nil {
		return nil, err
	}
	return r.svc.Questions.SelectQuestions(p.Context, viewer(p.Context), sel)
}

func (r *resolver) question(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(int)
	return r.svc.Questions.Get(p.Context, viewer(p.Context), int64(id))
}

func (r *resolver) semesters(p graphql.ResolveParams) (interface{}, error) {
	return r.svc.Metadata.Semesters(p.Context)
}

// user is null for anonymous callers.
func (r *resolver) user(p graphql.ResolveParams) (interface{}, error) {
	v := viewer(p.Context)
	if !v.Authenticated() {
		return nil, nil
	}
	return r.svc.Auth.Current(p.Context, v)
}

func (r *resolver) voteField(kind domain.MetadataKind) *graphql.Field {
	return &graphql.Field{
		Type: questionType,
		Args: graphql.FieldConfigArgument{
			"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(voteInput)},
		},
		Resolve: r.wrap(func(p graphql.ResolveParams) (interface{}, error) {
			data, _ := p.Args["data"].(map[string]interface{})
			questionID, _ := data["questionId"].(int)
			metadataID, _ := data["metadataId"].(int)
			var op domain.VoteOp = domain.ClearVote{}
			if value, ok := data["vote"].(int); ok {
				op = domain.SetVote{Value: value}
			}
			return r.svc.Votes.Vote(p.Context, viewer(p.Context), kind, int64(questionID), int64(metadataID), op)
		}),
	}
}

func (r *resolver) suggestTag(p graphql.ResolveParams) (interface{}, error) {
	name, _ := p.Args["tagName"].(string)
	questionID, _ := p.Args["questionId"].(int)
	return r.svc.Votes.SuggestTag(p.Context, name, int64(questionID))
}

func selectionParams(filter map[string]interface{}) domain.SelectionParams {
	var p domain.SelectionParams
	if raw, ok := filter["ids"]; ok {
		p.HasIDs = true
		p.IDs = ids(raw)
	}
	p.Profile, _ = filter["profile"].(bool)
	p.SetID = int64(intArg(filter["set"]))
	p.Search, _ = filter["search"].(string)
	p.Semester = int64(intArg(filter["semester"]))
	p.Specialties = ids(filter["specialties"])
	p.Tags = ids(filter["tags"])
	p.Year = intArg(filter["year"])
	if season, ok := filter["season"].(string); ok {
		p.Season = domain.Season(season)
	}
	p.N = intArg(filter["n"])
	p.OnlyNew, _ = filter["onlyNew"].(bool)
	return p
}

func intArg(v interface{}) int {
	n, _ := v.(int)
	return n
}

func ids(v interface{}) []int64 {
	list, _ := v.([]interface{})
	out := make([]int64, 0, len(list))
	for _, item := range list {
		if n, ok := item.(int); ok {
			out = append(out, int64(n))
		}
	}
	return out
}
