package application

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reportprint/domain/contracts"
	"reportprint/domain/events"
	"reportprint/domain/printjobs"
	"reportprint/infrastructure/scanner"
	"reportprint/infrastructure/submitters"
	"reportprint/platform/dispatch"
	"reportprint/test/helpers"
	"reportprint/test/mocks"
)

type printServiceFixture struct {
	collector *mocks.MockJobCollector
	submitPDF *mocks.MockSubmitter
	submitDoc *mocks.MockSubmitter
	spool     *mocks.MockSpoolMonitor
	runs      *mocks.MockRunRepository
	events    *mocks.MockRunEventPublisher
}

func newPrintServiceFixture() *printServiceFixture {
	return &printServiceFixture{
		collector: &mocks.MockJobCollector{},
		submitPDF: &mocks.MockSubmitter{},
		submitDoc: &mocks.MockSubmitter{},
		spool:     &mocks.MockSpoolMonitor{},
		runs:      &mocks.MockRunRepository{},
		events:    &mocks.MockRunEventPublisher{},
	}
}

func (f *printServiceFixture) service() *PrintServiceImpl {
	return NewPrintService(PrintServiceDeps{
		Collector: f.collector,
		SubmitPDF: f.submitPDF,
		SubmitDoc: f.submitDoc,
		Spool:     f.spool,
		Runs:      f.runs,
		Events:    f.events,
	}, PrintSettings{
		PrinterName:  "Office Printer",
		ParentFolder: "/reports",
		Dispatch: dispatch.Config{
			QueueLimit:          6,
			QueueWaitInterval:   time.Millisecond,
			EventPollInterval:   time.Millisecond,
			SpoolCheckInterval:  2 * time.Millisecond,
			EmptyStreakRequired: 3,
		},
	})
}

func (f *printServiceFixture) drainedSpool() {
	f.spool.On("PendingCount", mock.Anything, "Office Printer").Return(printjobs.KnownSpool(0))
	f.spool.On("IsEmpty", mock.Anything, "Office Printer").Return(true)
}

func (f *printServiceFixture) acceptEvents() {
	f.events.On("PublishRunStarted", mock.Anything).Return()
	f.events.On("PublishRunProgress", mock.Anything).Return()
	f.events.On("PublishRunFinished", mock.Anything).Return()
}

func testBatch() *Batch {
	td := helpers.NewTestData()
	return &Batch{
		TargetDate: td.TargetDate(),
		Jobs:       td.SimpleJobs("/reports/site/a.pdf", "/reports/site/a.docx"),
	}
}

func TestPrintService_Prepare_AppliesSelection(t *testing.T) {
	// Arrange
	f := newPrintServiceFixture()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local)
	f.collector.On("Collect", "/reports", date).Return(scanner.Result{
		Jobs:              testBatch().Jobs,
		MissingCompanions: []string{"b-site"},
	}, nil)

	// Act
	batch, err := f.service().Prepare(context.Background(), date, scanner.SelectOptions{
		Kinds: []printjobs.Kind{printjobs.KindDocumentA},
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, batch.Jobs, 1)
	assert.Equal(t, "a.pdf", batch.Jobs[0].DisplayName)
	assert.Equal(t, []string{"b-site"}, batch.MissingCompanions)
	assert.Equal(t, date, batch.TargetDate)
}

func TestPrintService_Prepare_CollectError(t *testing.T) {
	// Arrange
	f := newPrintServiceFixture()
	f.collector.On("Collect", "/reports", mock.Anything).Return(scanner.Result{}, errors.New("access denied"))

	// Act
	_, err := f.service().Prepare(context.Background(), time.Now(), scanner.SelectOptions{})

	// Assert
	assert.ErrorContains(t, err, "access denied")
}

func TestPrintService_Execute_RecordsAndPublishes(t *testing.T) {
	// Arrange
	f := newPrintServiceFixture()
	f.drainedSpool()
	f.acceptEvents()
	f.submitPDF.On("Submit", mock.Anything, "/reports/site/a.pdf").Return(nil)
	f.submitDoc.On("Submit", mock.Anything, "/reports/site/a.docx").Return(errors.New("exit status 1"))
	f.runs.On("CreateRun", mock.Anything, mock.AnythingOfType("*printjobs.PrintRun")).Return(nil)
	f.runs.On("FinishRun", mock.Anything, mock.AnythingOfType("*printjobs.PrintRun")).Return(nil)
	svc := f.service()

	// Act
	run, outcome, err := svc.Execute(context.Background(), testBatch(), printjobs.TriggerManual)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, printjobs.Completed(1, 1), outcome)
	assert.Equal(t, printjobs.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.Total)
	assert.Equal(t, 1, run.Failed)
	assert.NotEmpty(t, run.ID)
	assert.NotNil(t, run.FinishedAt)

	f.runs.AssertExpectations(t)
	f.events.AssertNumberOfCalls(t, "PublishRunStarted", 1)
	f.events.AssertNumberOfCalls(t, "PublishRunFinished", 1)
	f.events.AssertCalled(t, "PublishRunProgress", mock.MatchedBy(func(ev events.RunProgressEvent) bool {
		return ev.RunID == run.ID && ev.Event.Type == printjobs.EventErrorItem && ev.Event.Name == "a.docx"
	}))

	view, ok := svc.Current()
	require.True(t, ok)
	assert.False(t, view.Active)
	assert.Equal(t, run.ID, view.Run.ID)
	assert.Equal(t, 2, view.Progress.Processed())
}

func TestPrintService_Execute_HistoryFailureDoesNotStopRun(t *testing.T) {
	// Arrange
	f := newPrintServiceFixture()
	f.drainedSpool()
	f.acceptEvents()
	f.submitPDF.On("Submit", mock.Anything, mock.Anything).Return(nil)
	f.submitDoc.On("Submit", mock.Anything, mock.Anything).Return(nil)
	f.runs.On("CreateRun", mock.Anything, mock.Anything).Return(errors.New("database is locked"))
	f.runs.On("FinishRun", mock.Anything, mock.Anything).Return(contracts.ErrRunNotFound)

	// Act
	_, outcome, err := f.service().Execute(context.Background(), testBatch(), printjobs.TriggerScheduled)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, printjobs.Completed(2, 0), outcome)
}

func TestPrintService_Execute_SetupErrorTouchesNothing(t *testing.T) {
	// Arrange
	f := newPrintServiceFixture()
	svc := f.service()
	svc.settings.PrinterName = "  "

	// Act
	_, _, err := svc.Execute(context.Background(), testBatch(), printjobs.TriggerManual)

	// Assert
	assert.ErrorIs(t, err, dispatch.ErrNoPrinter)
	f.runs.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishRunStarted", mock.Anything)
}

func TestPrintService_Execute_MissingPrintProgramIsSetupError(t *testing.T) {
	// Arrange
	f := newPrintServiceFixture()
	dir := t.TempDir()
	svc := NewPrintService(PrintServiceDeps{
		Collector: f.collector,
		SubmitPDF: submitters.NewPDFToPrinter(filepath.Join(dir, "PDFtoPrinter.exe"), "Office Printer"),
		SubmitDoc: submitters.NewSOffice(filepath.Join(dir, "soffice.com"), "Office Printer"),
		Spool:     f.spool,
		Runs:      f.runs,
		Events:    f.events,
	}, f.service().settings)

	// Act
	run, outcome, err := svc.Execute(context.Background(), testBatch(), printjobs.TriggerManual)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, dispatch.ErrSubmitterSetup)
	assert.ErrorIs(t, err, submitters.ErrExecutableNotFound)
	assert.Nil(t, run)
	assert.Equal(t, printjobs.RunOutcome{}, outcome)
	f.runs.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishRunStarted", mock.Anything)
	f.events.AssertNotCalled(t, "PublishRunProgress", mock.Anything)
	f.spool.AssertNotCalled(t, "PendingCount", mock.Anything, mock.Anything)

	_, active := svc.Current()
	assert.False(t, active)
}

func TestPrintService_SecondRunIsRejectedAndCancelStopsFirst(t *testing.T) {
	// Arrange
	f := newPrintServiceFixture()
	f.drainedSpool()
	f.acceptEvents()
	f.runs.On("CreateRun", mock.Anything, mock.Anything).Return(nil)
	f.runs.On("FinishRun", mock.Anything, mock.Anything).Return(nil)

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	f.submitPDF.On("Submit", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		entered <- struct{}{}
		<-release
	}).Return(nil)
	svc := f.service()

	type result struct {
		outcome printjobs.RunOutcome
		err     error
	}
	first := make(chan result, 1)
	go func() {
		_, outcome, err := svc.Execute(context.Background(), testBatch(), printjobs.TriggerManual)
		first <- result{outcome, err}
	}()
	<-entered

	// Act
	_, _, secondErr := svc.Execute(context.Background(), testBatch(), printjobs.TriggerManual)
	cancelErr := svc.Cancel()
	close(release)

	// Assert
	assert.ErrorIs(t, secondErr, contracts.ErrRunActive)
	assert.NoError(t, cancelErr)

	select {
	case r := <-first:
		require.NoError(t, r.err)
		assert.Equal(t, printjobs.Cancelled(1, 0), r.outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not finish")
	}
	f.submitDoc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestPrintService_CancelWithoutRun(t *testing.T) {
	svc := newPrintServiceFixture().service()

	assert.ErrorIs(t, svc.Cancel(), ErrNoActiveRun)

	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestPrintService_History(t *testing.T) {
	// Arrange
	f := newPrintServiceFixture()
	runs := []*printjobs.PrintRun{{ID: "r2"}, {ID: "r1"}}
	f.runs.On("ListRuns", mock.Anything, 20).Return(runs, nil)

	// Act
	got, err := f.service().History(context.Background(), 20)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, runs, got)
}
