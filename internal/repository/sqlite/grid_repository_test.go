package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/mathdoku/internal/repository"
	"github.com/vytor/mathdoku/internal/repository/sqlite"
	"github.com/vytor/mathdoku/internal/testutil"
)

type GridRepositorySuite struct {
	suite.Suite
	db       *sql.DB
	grids    repository.GridRepository
	attempts repository.SolvingAttemptRepository
}

func (s *GridRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.grids = sqlite.NewGridRepository(s.db)
	s.attempts = sqlite.NewSolvingAttemptRepository(s.db)
}

func (s *GridRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *GridRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()

	grid, err := s.grids.Insert(ctx, 6)
	s.Require().NoError(err)
	s.Assert().Greater(grid.ID, int64(0))

	retrieved, err := s.grids.Get(ctx, grid.ID)
	s.Require().NoError(err)
	s.Assert().Equal(6, retrieved.GridSize)
	s.Assert().Equal(36, retrieved.Cells())
	s.Assert().WithinDuration(grid.CreatedAt, retrieved.CreatedAt, 0)
}

func (s *GridRepositorySuite) TestInsert_RejectsNonPositiveSize() {
	grid, err := s.grids.Insert(context.Background(), 0)
	s.Assert().Error(err)
	s.Assert().Nil(grid)
}

func (s *GridRepositorySuite) TestGet_NotFound() {
	grid, err := s.grids.Get(context.Background(), 99999)
	s.Assert().ErrorIs(err, sql.ErrNoRows)
	s.Assert().Nil(grid)
}

func (s *GridRepositorySuite) TestSolvingAttempts() {
	ctx := context.Background()
	grid, err := s.grids.Insert(ctx, 4)
	s.Require().NoError(err)

	count, err := s.attempts.CountForGrid(ctx, grid.ID)
	s.Require().NoError(err)
	s.Assert().Zero(count)

	first, err := s.attempts.Insert(ctx, grid.ID)
	s.Require().NoError(err)
	second, err := s.attempts.Insert(ctx, grid.ID)
	s.Require().NoError(err)
	s.Assert().Greater(second, first)

	count, err = s.attempts.CountForGrid(ctx, grid.ID)
	s.Require().NoError(err)
	s.Assert().Equal(2, count)
}

func (s *GridRepositorySuite) TestSolvingAttempt_UnknownGrid() {
	_, err := s.attempts.Insert(context.Background(), 99999)
	s.Assert().Error(err)
}

func (s *GridRepositorySuite) TestGridForAttempt() {
	ctx := context.Background()
	grid, err := s.grids.Insert(ctx, 5)
	s.Require().NoError(err)
	attemptID, err := s.attempts.Insert(ctx, grid.ID)
	s.Require().NoError(err)

	owner, err := s.attempts.GridForAttempt(ctx, attemptID)
	s.Require().NoError(err)
	s.Assert().Equal(grid.ID, owner)

	_, err = s.attempts.GridForAttempt(ctx, 99999)
	s.Assert().ErrorIs(err, sql.ErrNoRows)
}

func TestGridRepositorySuite(t *testing.T) {
	suite.Run(t, new(GridRepositorySuite))
}
