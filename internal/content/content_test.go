package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(Config{BaseDir: t.TempDir()})
}

func writeFixture(t *testing.T, repo *Repository, kind Kind, name, body string) {
	t.Helper()
	dir := repo.dir(kind)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestCategoriesCreatesDirAndSorts(t *testing.T) {
	repo := newTestRepo(t)

	names, err := repo.Categories(KindBooks)
	require.NoError(t, err)
	require.Empty(t, names)

	writeFixture(t, repo, KindBooks, "Physics.txt", "x")
	writeFixture(t, repo, KindBooks, "Algebra.txt", "y")
	writeFixture(t, repo, KindBooks, "Math.txt", "z")

	names, err = repo.Categories(KindBooks)
	require.NoError(t, err)
	require.Equal(t, []string{"Algebra", "Math", "Physics"}, names)
}

func TestCategoriesDeduplicatesExtensions(t *testing.T) {
	repo := newTestRepo(t)
	writeFixture(t, repo, KindInfo, "Schedule.txt", "text")
	writeFixture(t, repo, KindInfo, "Schedule.pdf", "%PDF")

	names, err := repo.Categories(KindInfo)
	require.NoError(t, err)
	require.Equal(t, []string{"Schedule"}, names)
}

func TestBookLink(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.BookLink("Physics")
	require.ErrorIs(t, err, ErrNotFound)

	writeFixture(t, repo, KindBooks, "Physics.txt", "example.com/book\n")

	link, err := repo.BookLink("Physics")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/book", link)
}

func TestInfoPrefersTextOverPDF(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Info("Schedule")
	require.ErrorIs(t, err, ErrNotFound)

	writeFixture(t, repo, KindInfo, "Schedule.pdf", "%PDF")
	info, err := repo.Info("Schedule")
	require.NoError(t, err)
	require.Empty(t, info.Text)
	require.NotEmpty(t, info.PDFPath)

	writeFixture(t, repo, KindInfo, "Schedule.txt", "Lectures start at 9am\n")
	info, err = repo.Info("Schedule")
	require.NoError(t, err)
	require.Equal(t, "Lectures start at 9am", info.Text)
	require.Empty(t, info.PDFPath)
}

func TestLectureRoster(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.LectureRoster("Math")
	require.ErrorIs(t, err, ErrNotFound)

	writeFixture(t, repo, KindLectures, "Math.txt", "Calculus\n\n  Algebra  \n")

	roster, err := repo.LectureRoster("Math")
	require.NoError(t, err)
	require.Equal(t, []string{"Calculus", "Algebra"}, roster)
}

func TestRemoveLectureLine(t *testing.T) {
	repo := newTestRepo(t)
	writeFixture(t, repo, KindLectures, "Math.txt", "Calculus\nAlgebra\nCalculus\n")

	require.NoError(t, repo.RemoveLectureLine("Math", "Calculus"))

	roster, err := repo.LectureRoster("Math")
	require.NoError(t, err)
	require.Equal(t, []string{"Algebra", "Calculus"}, roster)

	// absent line and absent file are both no-ops
	require.NoError(t, repo.RemoveLectureLine("Math", "Geometry"))
	require.NoError(t, repo.RemoveLectureLine("History", "Anything"))
}

func TestRemoveLectureLineTrimsMatch(t *testing.T) {
	repo := newTestRepo(t)
	writeFixture(t, repo, KindLectures, "Math.txt", "  Calculus  \n")

	require.NoError(t, repo.RemoveLectureLine("Math", "Calculus"))

	// the file survives empty; the direction itself is still found
	roster, err := repo.LectureRoster("Math")
	require.NoError(t, err)
	require.Empty(t, roster)
}
