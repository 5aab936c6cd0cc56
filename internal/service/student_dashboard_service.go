package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/skor-go-api/internal/dto"
	"github.com/noah-isme/skor-go-api/internal/models"
	"github.com/noah-isme/skor-go-api/internal/repository"
)

// StudentDashboardService aggregates grading results into a dashboard view.
type StudentDashboardService interface {
	GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type studentDashboardService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentDashboardService builds the dashboard aggregator.
func NewStudentDashboardService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentDashboardService {
	return &studentDashboardService{
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "student_dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%d", studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	assignments, _, err := s.assignments.List(ctx, repository.AssignmentFilter{})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	filter := repository.SubmissionFilter{StudentID: &studentID}
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := s.buildResponse(assignments, submissions)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *studentDashboardService) buildResponse(assignments []models.Assignment, submissions []models.Submission) dto.StudentDashboardResponse {
	now := s.now()
	submissionByAssignment := map[uint]models.Submission{}
	for _, submission := range submissions {
		if _, exists := submissionByAssignment[submission.AssignmentID]; !exists {
			submissionByAssignment[submission.AssignmentID] = submission
		}
	}

	summary := dto.ProgressSummary{}
	progress := make([]dto.AssignmentProgress, 0, len(assignments))
	var percentTotal float64
	var gradedCount int

	for _, assignment := range assignments {
		summary.TotalAssignments++
		submission, submitted := submissionByAssignment[assignment.ID]
		overdue := assignment.IsPastDue(now)

		item := dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			Deadline:     assignment.Deadline,
			TotalScore:   assignment.TotalScore,
			Status:       "pending",
		}

		if submitted {
			summary.Submitted++
			item.SubmissionID = &submission.ID
			item.Status = submission.Status

			if submission.IsGraded() {
				summary.Graded++
				gradedCount++
				score := submission.ObtainedScore
				item.ObtainedScore = &score
				if assignment.TotalScore > 0 {
					percentTotal += float64(score) / float64(assignment.TotalScore) * 100
				}
			} else {
				summary.Pending++
			}
		} else {
			summary.Pending++
			if overdue {
				summary.Overdue++
			}
		}

		item.Overdue = overdue && !submission.IsGraded()
		progress = append(progress, item)
	}

	if gradedCount > 0 {
		summary.AverageScorePct = percentTotal / float64(gradedCount)
	}

	if summary.TotalAssignments > 0 {
		summary.CompletionRate = float64(gradedCount) / float64(summary.TotalAssignments) * 100
	}

	pending := make([]dto.AssignmentProgress, 0)
	for _, item := range progress {
		if item.Status != models.SubmissionStatusGraded {
			pending = append(pending, item)
		}
	}

	recent := make([]dto.GradingActivity, 0, min(5, len(submissions)))
	for idx, submission := range submissions {
		if idx >= 5 {
			break
		}
		recent = append(recent, dto.GradingActivity{
			SubmissionID:    submission.ID,
			AssignmentID:    submission.AssignmentID,
			AssignmentTitle: submission.Assignment.Title,
			Status:          submission.Status,
			ObtainedScore:   submission.ObtainedScore,
			TotalScore:      submission.Assignment.TotalScore,
			OverallFeedback: submission.OverallFeedback,
			GradedAt:        submission.GradedAt,
		})
	}

	return dto.StudentDashboardResponse{
		Summary: summary,
		Pending: pending,
		Recent:  recent,
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
