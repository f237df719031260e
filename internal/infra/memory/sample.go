package memory

import (
	"context"

	"medmcq/internal/domain"
)

// Sample is the demo data loaded by Seed.
type Sample struct {
	Semester    domain.Semester
	ExamSet     domain.ExamSet
	Tags        []domain.Metadata
	Specialties []domain.Metadata
	Questions   []int64
}

// Seed loads one semester with an exam set, a few tags, specialties and
// questions. Used for demo runs without a database and in tests.
func Seed(ctx context.Context, s *Store) (Sample, error) {
	var out Sample
	out.Semester = s.AddSemester(domain.Semester{Value: 7, Name: "Reproduktion, urologi og endokrinologi", ShortName: "RUE"})

	var err error
	out.ExamSet, err = s.CreateExamSet(ctx, domain.ExamSet{SemesterID: out.Semester.ID, Year: 2019, Season: domain.SeasonSpring})
	if err != nil {
		return Sample{}, err
	}
	for _, name := range []string{"Endokrinologi", "Urologi"} {
		m, err := s.AddMetadata(domain.Metadata{Kind: domain.MetadataTag, SemesterID: out.Semester.ID, Name: name})
		if err != nil {
			return Sample{}, err
		}
		out.Tags = append(out.Tags, m)
	}
	for _, name := range []string{"Gynækologi", "Urologi"} {
		m, err := s.AddMetadata(domain.Metadata{Kind: domain.MetadataSpecialty, SemesterID: out.Semester.ID, Name: name})
		if err != nil {
			return Sample{}, err
		}
		out.Specialties = append(out.Specialties, m)
	}

	questions := []domain.QuestionInput{
		{
			Text:           "Hvilken markør anvendes ved opfølgning af prostatacancer?",
			Answer1:        "PSA",
			Answer2:        "CEA",
			Answer3:        "AFP",
			CorrectAnswers: []int{1},
		},
		{
			Text:           "Hvilket hormon stiger ved primær hypothyreose?",
			Answer1:        "T4",
			Answer2:        "TSH",
			Answer3:        "Kortisol",
			CorrectAnswers: []int{2},
		},
		{
			Text:           "Hvilke er risikofaktorer for blærecancer?",
			Answer1:        "Rygning",
			Answer2:        "Anilinfarvestoffer",
			Answer3:        "Motion",
			CorrectAnswers: []int{1, 2},
		},
	}
	for i, in := range questions {
		in.ExamSetID = out.ExamSet.ID
		in.ExamSetQno = i + 1
		id, err := s.CreateQuestion(ctx, in)
		if err != nil {
			return Sample{}, err
		}
		out.Questions = append(out.Questions, id)
	}
	return out, nil
}
