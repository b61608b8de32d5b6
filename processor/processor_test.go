package processor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallsorter/config"
	"wallsorter/database"
	"wallsorter/imageprocessor"
	"wallsorter/relocator"
	"wallsorter/scanner"
	"wallsorter/types"
)

func writePNG(t *testing.T, dir, name string, width, height int, fill func(x, y int) color.Gray) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, fill(x, y))
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func leftDark(x, _ int) color.Gray {
	if x < 16 {
		return color.Gray{}
	}
	return color.Gray{Y: 255}
}

func topDark(_, y int) color.Gray {
	if y < 16 {
		return color.Gray{}
	}
	return color.Gray{Y: 255}
}

func black(_, _ int) color.Gray {
	return color.Gray{}
}

func newTestProcessor(t *testing.T, dir string, dryRun bool) (*Processor, *relocator.Mover) {
	t.Helper()
	db, err := database.InitDatabase(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	cfg.Workers = 2
	cfg.DryRun = dryRun
	require.NoError(t, cfg.Validate())

	mover := relocator.NewMover(dir, db, dryRun)
	p := New(cfg, imageprocessor.NewImageLoaderRegistry(false), mover)
	p.ShowProgress = false
	p.UseExiftool = false
	return p, mover
}

func TestFindDuplicatesMovesBothCopies(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 32, 32, leftDark)
	writePNG(t, dir, "b.png", 32, 32, topDark)
	writePNG(t, dir, "c.png", 32, 32, leftDark)

	p, _ := newTestProcessor(t, dir, false)
	report, err := p.FindDuplicates(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []types.ImageRef{"a.png", "c.png"}, report.Moved[relocator.LabelDuplicates])
	assert.Len(t, report.Pairs, 1)
	assert.FileExists(t, filepath.Join(dir, relocator.LabelDuplicates, "a.png"))
	assert.FileExists(t, filepath.Join(dir, relocator.LabelDuplicates, "c.png"))
	assert.FileExists(t, filepath.Join(dir, "b.png"))
}

func TestFindSimilarsMovesMatchesOnly(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 32, 32, leftDark)
	writePNG(t, dir, "b.png", 32, 32, topDark)
	writePNG(t, dir, "c.png", 32, 32, leftDark)

	p, _ := newTestProcessor(t, dir, false)
	report, err := p.FindSimilars(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.Compared)
	assert.Equal(t, 12, report.DiffLimit)
	assert.Equal(t, []types.ImageRef{"a.png", "c.png"}, report.Moved[relocator.LabelSimilars])
	assert.FileExists(t, filepath.Join(dir, "b.png"))
}

func TestUndecodableImagesBecomeWarnings(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 32, 32, leftDark)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("garbage"), 0o644))

	p, _ := newTestProcessor(t, dir, false)
	report, err := p.FindSimilars(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, types.ImageRef("broken.jpg"), report.Warnings[0].Ref)
	assert.Equal(t, 0, report.MovedCount())
}

func TestFindNeedEdits(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "resize.png", 1280, 720, black)
	writePNG(t, dir, "cropresize.png", 400, 400, black)
	writePNG(t, dir, "fine.png", 1920, 1080, black)

	p, _ := newTestProcessor(t, dir, false)
	report, err := p.FindNeedEdits(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.ImageRef{"resize.png"}, report.Moved[relocator.LabelNeedResize])
	assert.Equal(t, []types.ImageRef{"cropresize.png"}, report.Moved[relocator.LabelNeedCropResize])
	assert.Empty(t, report.Moved[relocator.LabelNeedCrop])
	assert.FileExists(t, filepath.Join(dir, "fine.png"))
}

func TestRunAllStopsWhenBatchIsEmptied(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 32, 32, leftDark)
	writePNG(t, dir, "b.png", 32, 32, leftDark)

	p, _ := newTestProcessor(t, dir, false)
	report, err := p.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.MovedCount())
	assert.Len(t, report.Moved[relocator.LabelDuplicates], 2)
}

func TestRunAllRelistsBetweenPasses(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 32, 32, leftDark)
	writePNG(t, dir, "b.png", 32, 32, leftDark)
	writePNG(t, dir, "c.png", 32, 32, topDark)

	p, mover := newTestProcessor(t, dir, false)
	report, err := p.RunAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Moved[relocator.LabelDuplicates], 2)
	assert.Empty(t, report.Moved[relocator.LabelSimilars])
	assert.Equal(t, []types.ImageRef{"c.png"}, report.Moved[relocator.LabelNeedCropResize])

	stats, err := database.GetRunStats(mover.DB(), mover.RunID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total())

	var out bytes.Buffer
	report.Print(&out, false)
	assert.Contains(t, out.String(), "Moved 2 images to Duplicates")
}

func TestDryRunLeavesFilesInPlace(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 32, 32, leftDark)
	writePNG(t, dir, "b.png", 32, 32, leftDark)

	p, _ := newTestProcessor(t, dir, true)
	report, err := p.FindDuplicates(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Moved[relocator.LabelDuplicates], 2)
	assert.FileExists(t, filepath.Join(dir, "a.png"))
	assert.FileExists(t, filepath.Join(dir, "b.png"))

	var out bytes.Buffer
	report.Print(&out, true)
	assert.Contains(t, out.String(), "Would move 2 images to Duplicates")
}

func TestEmptyBatchIsFatal(t *testing.T) {
	p, _ := newTestProcessor(t, t.TempDir(), false)

	_, err := p.FindDuplicates(context.Background())
	assert.ErrorIs(t, err, scanner.ErrEmptyBatch)

	_, err = p.RunAll(context.Background())
	assert.ErrorIs(t, err, scanner.ErrEmptyBatch)
}

func TestFailedRelocationKeepsPartialReport(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "resize.png", 1280, 720, black)
	writePNG(t, dir, "small.png", 32, 32, topDark)
	require.NoError(t, os.WriteFile(filepath.Join(dir, relocator.LabelNeedCropResize), []byte("in the way"), 0o644))

	p, mover := newTestProcessor(t, dir, false)
	report, err := p.FindNeedEdits(context.Background())
	require.Error(t, err)
	require.NotNil(t, report)

	assert.Equal(t, []types.ImageRef{"resize.png"}, report.Moved[relocator.LabelNeedResize])
	records, err := database.ListMoves(mover.DB(), mover.RunID)
	require.NoError(t, err)
	assert.Len(t, records, report.MovedCount())
}

func TestRunAllMergesFailedPass(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "a.png", 32, 32, leftDark)
	writePNG(t, dir, "b.png", 32, 32, leftDark)
	writePNG(t, dir, "c.png", 1280, 720, black)
	writePNG(t, dir, "d.png", 32, 32, topDark)
	require.NoError(t, os.WriteFile(filepath.Join(dir, relocator.LabelNeedCropResize), []byte("in the way"), 0o644))

	p, _ := newTestProcessor(t, dir, false)
	report, err := p.RunAll(context.Background())
	require.Error(t, err)

	assert.Len(t, report.Moved[relocator.LabelDuplicates], 2)
	assert.Equal(t, []types.ImageRef{"c.png"}, report.Moved[relocator.LabelNeedResize])
	assert.Empty(t, report.Moved[relocator.LabelSimilars])
	assert.Equal(t, 3, report.MovedCount())

	var out bytes.Buffer
	report.Print(&out, false)
	assert.Contains(t, out.String(), "Moved 1 images to Need_resize")
}
