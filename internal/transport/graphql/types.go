package graphql

import (
	"github.com/graphql-go/graphql"
	"medmcq/internal/app"
	"medmcq/internal/domain"
)

// prop resolves a field from a typed source value.
func prop[T any](typ graphql.Output, get func(T) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			switch src := p.Source.(type) {
			case T:
				return get(src), nil
			case *T:
				if src == nil {
					return nil, nil
				}
				return get(*src), nil
			}
			return nil, nil
		},
	}
}

var semesterType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Semester",
	Fields: graphql.Fields{
		"id":        prop(graphql.Int, func(s domain.Semester) any { return s.ID }),
		"value":     prop(graphql.Int, func(s domain.Semester) any { return s.Value }),
		"name":      prop(graphql.String, func(s domain.Semester) any { return s.Name }),
		"shortName": prop(graphql.String, func(s domain.Semester) any { return s.ShortName }),
	},
})

var examSetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ExamSet",
	Fields: graphql.Fields{
		"id":         prop(graphql.Int, func(e domain.ExamSet) any { return e.ID }),
		"semesterId": prop(graphql.Int, func(e domain.ExamSet) any { return e.SemesterID }),
		"year":       prop(graphql.Int, func(e domain.ExamSet) any { return e.Year }),
		"season":     prop(graphql.String, func(e domain.ExamSet) any { return string(e.Season) }),
	},
})

var metadataType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Metadata",
	Fields: graphql.Fields{
		"id":            prop(graphql.Int, func(m domain.Metadata) any { return m.ID }),
		"name":          prop(graphql.String, func(m domain.Metadata) any { return m.Name }),
		"parentId":      prop(graphql.Int, func(m domain.Metadata) any {
			if m.ParentID == nil {
				return nil
			}
			return *m.ParentID
		}),
		"questionCount": prop(graphql.Int, func(m domain.Metadata) any { return m.QuestionCount }),
	},
})

var semesterViewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SemesterOverview",
	Fields: graphql.Fields{
		"id":          prop(graphql.Int, func(s app.SemesterView) any { return s.ID }),
		"value":       prop(graphql.Int, func(s app.SemesterView) any { return s.Value }),
		"name":        prop(graphql.String, func(s app.SemesterView) any { return s.Name }),
		"shortName":   prop(graphql.String, func(s app.SemesterView) any { return s.ShortName }),
		"examSets":    prop(graphql.NewList(examSetType), func(s app.SemesterView) any { return s.ExamSets }),
		"tags":        prop(graphql.NewList(metadataType), func(s app.SemesterView) any { return s.Tags }),
		"specialties": prop(graphql.NewList(metadataType), func(s app.SemesterView) any { return s.Specialties }),
	},
})

var associationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Association",
	Fields: graphql.Fields{
		"id":    prop(graphql.Int, func(a domain.Association) any { return a.MetadataID }),
		"name":  prop(graphql.String, func(a domain.Association) any { return a.Name }),
		"votes": prop(graphql.Int, func(a domain.Association) any { return a.Votes }),
	},
})

var voteType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Vote",
	Fields: graphql.Fields{
		"id":         prop(graphql.Int, func(v domain.Vote) any { return v.ID }),
		"metadataId": prop(graphql.Int, func(v domain.Vote) any { return v.MetadataID }),
		"value":      prop(graphql.Int, func(v domain.Vote) any { return v.Value }),
	},
})

var commentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Comment",
	Fields: graphql.Fields{
		"id":          prop(graphql.Int, func(c domain.Comment) any { return c.ID }),
		"text":        prop(graphql.String, func(c domain.Comment) any { return c.Text }),
		"username":    prop(graphql.String, func(c domain.Comment) any { return c.Username }),
		"isPrivate":   prop(graphql.Boolean, func(c domain.Comment) any { return c.IsPrivate }),
		"isAnonymous": prop(graphql.Boolean, func(c domain.Comment) any { return c.IsAnonymous }),
		"likes":       prop(graphql.NewList(graphql.Int), func(c domain.Comment) any { return c.Likes }),
		"createdAt":   prop(graphql.DateTime, func(c domain.Comment) any { return c.CreatedAt }),
	},
})

var questionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Question",
	Fields: graphql.Fields{
		"id":                 prop(graphql.Int, func(q domain.QuestionView) any { return q.ID }),
		"text":               prop(graphql.String, func(q domain.QuestionView) any { return q.Text }),
		"answer1":            prop(graphql.String, func(q domain.QuestionView) any { return q.Answer1 }),
		"answer2":            prop(graphql.String, func(q domain.QuestionView) any { return q.Answer2 }),
		"answer3":            prop(graphql.String, func(q domain.QuestionView) any { return q.Answer3 }),
		"image":              prop(graphql.String, func(q domain.QuestionView) any { return q.Image }),
		"examSetQno":         prop(graphql.Int, func(q domain.QuestionView) any { return q.ExamSetQno }),
		"correctAnswers":     prop(graphql.NewList(graphql.Int), func(q domain.QuestionView) any { return q.CorrectAnswers }),
		"examSet":            prop(examSetType, func(q domain.QuestionView) any { return q.ExamSet }),
		"semester":           prop(semesterType, func(q domain.QuestionView) any { return q.Semester }),
		"tags":               prop(graphql.NewList(associationType), func(q domain.QuestionView) any { return q.Tags }),
		"specialties":        prop(graphql.NewList(associationType), func(q domain.QuestionView) any { return q.Specialties }),
		"publicComments":     prop(graphql.NewList(commentType), func(q domain.QuestionView) any { return q.PublicComments }),
		"privateComments":    prop(graphql.NewList(commentType), func(q domain.QuestionView) any { return q.PrivateComments }),
		"userTagVotes":       prop(graphql.NewList(voteType), func(q domain.QuestionView) any { return q.UserTagVotes }),
		"userSpecialtyVotes": prop(graphql.NewList(voteType), func(q domain.QuestionView) any { return q.UserSpecialtyVotes }),
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":       prop(graphql.Int, func(u domain.User) any { return u.ID }),
		"username": prop(graphql.String, func(u domain.User) any { return u.Username }),
		"email":    prop(graphql.String, func(u domain.User) any { return u.Email }),
		"role":     prop(graphql.String, func(u domain.User) any { return string(u.Role) }),
	},
})

var questionFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "QuestionFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"ids":         &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.Int)},
		"profile":     &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"set":         &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"search":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"semester":    &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"specialties": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.Int)},
		"tags":        &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.Int)},
		"year":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"season":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"n":           &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"onlyNew":     &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
	},
})

var voteInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "VoteInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"questionId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"metadataId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"vote":       &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})
