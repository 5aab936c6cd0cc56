package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/skor-go-api/internal/dto"
	"github.com/noah-isme/skor-go-api/internal/grading"
	"github.com/noah-isme/skor-go-api/internal/models"
	"github.com/noah-isme/skor-go-api/internal/repository"
	"github.com/noah-isme/skor-go-api/pkg/ai"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrDuplicateSubmission indicates the student already submitted this assignment.
var ErrDuplicateSubmission = errors.New("submission already exists for this assignment and student")

// ErrQuestionNotFound indicates an answer referenced a question that does not
// belong to the assignment.
var ErrQuestionNotFound = errors.New("question not found in assignment")

// ErrDuplicateAnswer indicates the payload answered the same question twice.
var ErrDuplicateAnswer = errors.New("duplicate answer for question")

// SubmissionService orchestrates the submission grading lifecycle.
type SubmissionService interface {
	Submit(ctx context.Context, assignmentID, studentID uint, payload dto.SubmitRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	grader      *grading.AnswerGrader
	overall     *grading.OverallFeedback
	transcriber ai.Transcriber
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. The
// transcriber may be nil when image answers are not supported.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, grader *grading.AnswerGrader, overall *grading.OverallFeedback, transcriber ai.Transcriber, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		grader:      grader,
		overall:     overall,
		transcriber: transcriber,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// gradingTrace is the audit record stored next to each answer.
type gradingTrace struct {
	Strategy         string    `json:"strategy"`
	Transcribed      bool      `json:"transcribed,omitempty"`
	TranscriptionErr string    `json:"transcription_error,omitempty"`
	Score            int       `json:"score"`
	MaxScore         int       `json:"max_score"`
	GradedAt         time.Time `json:"graded_at"`
}

// Submit runs the full grading pipeline for one student's answer set.
//
// The pipeline has two phases. The validation phase resolves every question
// reference without writing anything, so client errors abort with no partial
// state. The grading phase absorbs every failure into a safe verdict, and the
// finished submission is persisted with its answers in one transaction, so a
// stored submission always has fully graded answers.
func (s *submissionService) Submit(ctx context.Context, assignmentID, studentID uint, payload dto.SubmitRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/skor-go-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.submit")
	span.SetAttributes(
		attribute.Int64("submission.assignment_id", int64(assignmentID)),
		attribute.Int64("submission.student_id", int64(studentID)),
		attribute.Int("submission.answers", len(payload.Answers)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if assignment.IsPastDue(s.now()) {
		return dto.SubmissionResponse{}, ErrAssignmentPastDue
	}

	exists, err := s.submissions.ExistsByAssignmentAndStudent(ctx, assignmentID, studentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if exists {
		span.SetStatus(codes.Error, "duplicate_submission")
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	}

	// Validation pass: every question reference must resolve before any
	// grading work or persistence happens.
	questions, err := s.resolveQuestions(ctx, assignment, payload.Answers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "question_resolution_failed")
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.SubmissionStatusGrading,
		SubmittedAt:  s.now(),
	}

	// Grading pass: failures here never abort, they only lower scores.
	totalScore := 0
	answers := make([]models.Answer, 0, len(payload.Answers))
	for i, entry := range payload.Answers {
		question := questions[i]
		answer := s.gradeAnswer(ctx, question, entry)
		if answer.ObtainedScore != nil {
			totalScore += *answer.ObtainedScore
		}
		answers = append(answers, answer)
	}

	gradedAt := s.now()
	submission.Answers = answers
	submission.ObtainedScore = totalScore
	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &gradedAt
	submission.OverallFeedback = s.overall.Summarize(ctx, assignment, withQuestions(submission, questions))

	if err := s.submissions.CreateGraded(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent submit by the same student won the race; the
			// unique index keeps exactly one submission.
			span.SetStatus(codes.Error, "duplicate_submission")
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_persist_failed")
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.Int("submission.obtained_score", totalScore))
	s.logger.Info().
		Uint("submission_id", created.ID).
		Uint("assignment_id", assignmentID).
		Uint("student_id", studentID).
		Int("obtained_score", totalScore).
		Msg("submission graded")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		Status:       filter.Status,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) resolveQuestions(ctx context.Context, assignment models.Assignment, entries []dto.AnswerSubmitRequest) ([]models.Question, error) {
	byID := make(map[uint]models.Question, len(assignment.Questions))
	for _, question := range assignment.Questions {
		byID[question.ID] = question
	}

	seen := make(map[uint]struct{}, len(entries))
	questions := make([]models.Question, 0, len(entries))
	for _, entry := range entries {
		question, ok := byID[entry.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: question %d", ErrQuestionNotFound, entry.QuestionID)
		}
		if _, dup := seen[entry.QuestionID]; dup {
			return nil, fmt.Errorf("%w: question %d", ErrDuplicateAnswer, entry.QuestionID)
		}
		seen[entry.QuestionID] = struct{}{}
		questions = append(questions, question)
	}

	return questions, nil
}

// gradeAnswer resolves the answer text and produces a persisted-ready Answer.
// It never fails: transcription errors become marker text that is graded like
// any other answer, and grader failures surface as zero-score verdicts.
func (s *submissionService) gradeAnswer(ctx context.Context, question models.Question, entry dto.AnswerSubmitRequest) models.Answer {
	trace := gradingTrace{MaxScore: question.MaxScore}

	text := s.sanitizer.Sanitize(entry.AnswerText)
	if text == "" && entry.AnswerImage != "" {
		text = s.transcribeImage(ctx, entry.AnswerImage, &trace)
	}

	var verdict grading.Verdict
	if match, ok := grading.CheckExactMatch(question, text); ok {
		grading.RecordExactMatch()
		trace.Strategy = "exact_match"
		verdict = match
	} else {
		trace.Strategy = "ai"
		verdict = s.grader.Grade(ctx, question, text)
	}

	trace.Score = verdict.Score
	trace.GradedAt = s.now()
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		s.logger.Warn().Err(err).Uint("question_id", question.ID).Msg("failed to encode grading trace")
	}

	score := verdict.Score
	return models.Answer{
		QuestionID:    question.ID,
		AnswerText:    text,
		ObtainedScore: &score,
		AIFeedback:    verdict.Feedback,
		GradingTrace:  traceJSON,
	}
}

func (s *submissionService) transcribeImage(ctx context.Context, encoded string, trace *gradingTrace) string {
	trace.Transcribed = true

	if s.transcriber == nil {
		trace.TranscriptionErr = "transcription not configured"
		return "[transcription failed: image answers are not supported]"
	}

	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		trace.TranscriptionErr = err.Error()
		return "[transcription failed: invalid image data]"
	}

	text, err := s.transcriber.Transcribe(ctx, image)
	if err != nil {
		// The marker text is graded like any other answer, preserving an
		// audit trail instead of blocking the submission.
		trace.TranscriptionErr = err.Error()
		s.logger.Warn().Err(err).Msg("transcription failed, grading marker text")
		return fmt.Sprintf("[transcription failed: %v]", err)
	}

	return s.sanitizer.Sanitize(text)
}

// withQuestions attaches resolved questions to a copy of the submission's
// answers so the overall-feedback prompt can show per-question lines. The
// original answers stay bare for persistence.
func withQuestions(submission models.Submission, questions []models.Question) models.Submission {
	preview := submission
	preview.Answers = make([]models.Answer, len(submission.Answers))
	copy(preview.Answers, submission.Answers)
	for i := range preview.Answers {
		if i < len(questions) {
			preview.Answers[i].Question = questions[i]
		}
	}
	return preview
}
