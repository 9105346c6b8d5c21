// Package session runs quiz sessions: it grades each answer, decides
// whether to decompose, re-ask or move on, credits points and produces the
// closing summary.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/stepwise/internal/evaluator"
	"github.com/abhisek/stepwise/internal/llm"
	"github.com/abhisek/stepwise/internal/questiongen"
	"github.com/abhisek/stepwise/internal/quiztree"
	"github.com/abhisek/stepwise/internal/ranking"
	"github.com/abhisek/stepwise/internal/store"
	"github.com/abhisek/stepwise/internal/tutor"
)

// Grader grades answers. *evaluator.Evaluator implements it.
type Grader interface {
	EvaluateFirst(ctx context.Context, in evaluator.Input) (*evaluator.Result, error)
	EvaluateRefinement(ctx context.Context, in evaluator.Input, prior []string) (*evaluator.Result, error)
}

// Refiner synthesizes follow-up questions. *questiongen.Refiner implements it.
type Refiner interface {
	Synthesize(ctx context.Context, in questiongen.RefinementInput) ([]string, error)
}

// Tutor produces hints, cleaned answers and summaries. *tutor.Service
// implements it.
type Tutor interface {
	Hint(ctx context.Context, in tutor.HintInput) (string, error)
	RewriteAnswer(ctx context.Context, question, answer string) (string, error)
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Options wires an Orchestrator. Store, Evaluator, Refiner and Tutor are
// required; Reporter and Events are optional.
type Options struct {
	Store     Store
	Evaluator Grader
	Refiner   Refiner
	Tutor     Tutor
	Reporter  ranking.Reporter
	Events    store.ActivityRepo
	Logger    *slog.Logger

	// RewriteAnswers cleans each answer through the Tutor before grading.
	RewriteAnswers bool

	Now func() time.Time
}

// Orchestrator drives sessions through their turns.
type Orchestrator struct {
	opts Options
	log  *slog.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{opts: opts, log: opts.Logger}
}

// Start builds a question forest from seeds and registers a new session.
func (o *Orchestrator) Start(ctx context.Context, seeds []quiztree.Seed, owner ranking.Owner) (string, quiztree.Progress, error) {
	engine, err := quiztree.New(seeds)
	if err != nil {
		return "", quiztree.Progress{}, err
	}

	sess := newSession(uuid.NewString(), owner, engine, o.opts.Now())
	o.opts.Store.Put(sess)

	o.log.Info("session started", "session", sess.ID, "questions", len(seeds), "course", owner.CourseID)
	o.recordSession(ctx, sess, store.SessionStarted, "")
	return sess.ID, engine.Progress(), nil
}

func (o *Orchestrator) lookup(id string) (*Session, error) {
	sess, ok := o.opts.Store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Current returns the active question. Once every question has been
// answered the view is marked finished and carries no question.
func (o *Orchestrator) Current(_ context.Context, id string) (*QuestionView, error) {
	sess, err := o.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.phase == PhaseSummarized {
		return &QuestionView{Finished: true}, nil
	}
	view := &QuestionView{Progress: sess.engine.Progress()}
	node := sess.engine.Current()
	if node == nil {
		view.Finished = true
		return view, nil
	}
	view.Question = node.Question()
	view.ReferenceText = node.ReferenceText()
	view.Kind = node.Kind()
	return view, nil
}

// IsFinished reports whether the session has no question left to ask.
func (o *Orchestrator) IsFinished(_ context.Context, id string) (bool, error) {
	sess, err := o.lookup(id)
	if err != nil {
		return false, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.phase != PhaseActive, nil
}

// turn holds everything the collaborators returned for one answer. Nothing
// in the session changes until a turn is complete.
type turn struct {
	node     *quiztree.Node
	answer   string
	result   *evaluator.Result
	followUp []string
	hint     string
	improper bool
	advance  bool
}

// Submit grades answer against the current question and moves the session
// forward. If any collaborator fails the session is left exactly as it
// was, so the same submission can be retried.
func (o *Orchestrator) Submit(ctx context.Context, id, answer string) (*SubmitResult, error) {
	sess, err := o.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch sess.phase {
	case PhaseSummarized:
		return nil, ErrSessionFinished
	case PhaseFinished:
		return nil, ErrNoActiveQuestion
	}
	node := sess.engine.Current()
	if node == nil {
		return nil, ErrNoActiveQuestion
	}

	t, err := o.play(ctx, sess, node, answer)
	if err != nil {
		return nil, err
	}

	// Commit.
	node.SetAnswer(t.answer)
	node.AppendFeedback(t.result.Feedback)
	sess.log = append(sess.log, Outcome{
		Question: node.Question(),
		Answer:   t.answer,
		Category: t.result.Category,
		Feedback: t.result.Feedback,
	})
	created := 0
	if len(t.followUp) > 0 {
		created, err = sess.engine.Graft(node.ID(), t.followUp)
		if err != nil {
			// Only reachable for a refinement parent, which never asks for
			// follow-ups.
			return nil, fmt.Errorf("graft follow-ups: %w", err)
		}
	}
	if t.advance {
		sess.engine.Advance()
	}

	res := &SubmitResult{
		Category:           t.result.Category,
		Feedback:           t.result.Feedback,
		MoveToNext:         t.advance,
		ImproperlyAnswered: t.improper,
		Hint:               t.hint,
		RefinementsCreated: created,
		Progress:           sess.engine.Progress(),
	}

	o.log.Info("answer graded",
		"session", sess.ID,
		"kind", node.Kind().String(),
		"category", string(t.result.Category),
		"rule", t.result.Rule,
		"attempt", t.result.Attempt,
		"refinements", created,
	)
	o.recordAnswer(ctx, sess, node, t, created)

	if points, reason := pointsFor(t.result.Category, created); points > 0 {
		res.PointsAwarded = points
		sess.points += points
		o.report(ctx, ranking.Award{Owner: sess.Owner, Points: points, Reason: reason, SessionID: sess.ID})
	}

	if sess.engine.IsFinished() {
		sess.phase = PhaseFinished
		res.Finished = true
		if _, err := o.summarize(ctx, sess); err != nil {
			o.log.Warn("session summary failed, will retry on fetch", "session", sess.ID, "error", err)
		}
	}
	return res, nil
}

// play makes every collaborator call the answer needs.
func (o *Orchestrator) play(ctx context.Context, sess *Session, node *quiztree.Node, answer string) (*turn, error) {
	t := &turn{node: node, answer: answer}
	ctx = llm.WithSession(ctx, sess.ID)

	if o.opts.RewriteAnswers {
		rewritten, err := o.opts.Tutor.RewriteAnswer(ctx, node.Question(), answer)
		if err != nil {
			return nil, collaboratorErr("rewrite answer", err)
		}
		t.answer = rewritten
	}

	in := evaluator.Input{
		ReferenceText: node.ReferenceText(),
		Question:      node.Question(),
		Answer:        t.answer,
	}
	var err error
	if node.Kind() == quiztree.KindRefinement {
		t.result, err = o.opts.Evaluator.EvaluateRefinement(ctx, in, node.Feedback())
	} else {
		t.result, err = o.opts.Evaluator.EvaluateFirst(ctx, in)
	}
	if err != nil {
		return nil, collaboratorErr("grade answer", err)
	}

	switch {
	case t.result.Category.Satisfactory():
		t.advance = true

	case node.Kind() != quiztree.KindRefinement:
		// A failed basic question is never re-asked, only decomposed.
		t.followUp, err = o.opts.Refiner.Synthesize(ctx, questiongen.RefinementInput{
			ReferenceText: node.ReferenceText(),
			Question:      node.Question(),
			Answer:        t.answer,
			Feedback:      t.result.Feedback,
		})
		if err != nil {
			return nil, collaboratorErr("synthesize refinements", err)
		}
		t.advance = true

	case node.Attempts()+1 >= evaluator.MaxRefinementAttempts:
		t.improper = true
		t.advance = true

	default:
		t.hint, err = o.opts.Tutor.Hint(ctx, tutor.HintInput{
			Question:      node.Question(),
			Answer:        t.answer,
			ReferenceText: node.ReferenceText(),
			Context:       sess.engine.Tree().ConversationContext(node.ID()),
		})
		if err != nil {
			return nil, collaboratorErr("hint", err)
		}
	}
	return t, nil
}

// Summary returns the closing summary of a finished session. A summary
// that failed earlier is retried here. The session stays readable until
// its completion is awarded, it is quit, or it expires.
func (o *Orchestrator) Summary(ctx context.Context, id string) (string, error) {
	sess, err := o.lookup(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.phase == PhaseActive {
		return "", ErrNotFinished
	}
	return o.summarize(ctx, sess)
}

// summarize produces the summary once and releases the question forest.
func (o *Orchestrator) summarize(ctx context.Context, sess *Session) (string, error) {
	if sess.phase == PhaseSummarized {
		return sess.summary, nil
	}
	transcript, err := Transcript(sess.log)
	if err != nil {
		return "", err
	}
	summary, err := o.opts.Tutor.Summarize(llm.WithSession(ctx, sess.ID), transcript)
	if err != nil {
		return "", collaboratorErr("summarize session", err)
	}
	sess.release(summary)
	o.log.Info("session finished", "session", sess.ID, "points", sess.points)
	o.recordSession(ctx, sess, store.SessionFinished, summary)
	return summary, nil
}

// Quit forgets a session.
func (o *Orchestrator) Quit(ctx context.Context, id string) error {
	sess, err := o.lookup(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	o.opts.Store.Delete(id)
	o.log.Info("session quit", "session", id)
	o.recordSession(ctx, sess, store.SessionQuit, "")
	return nil
}

// AwardCompletion credits a finished quiz: PointsPerCompleted for each
// question completed, up to the session's core question count. It returns
// the points awarded and forgets the session, so a quiz is credited once.
// An owner without course or user falls back to the session's owner.
func (o *Orchestrator) AwardCompletion(ctx context.Context, sessionID string, owner ranking.Owner, completed int) (int, error) {
	sess, err := o.lookup(sessionID)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch {
	case sess.credited:
		return 0, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	case sess.phase == PhaseActive:
		return 0, ErrNotFinished
	case completed < 0 || completed > sess.total:
		return 0, fmt.Errorf("%w: completion count %d outside 0..%d", quiztree.ErrInvalidArgument, completed, sess.total)
	}
	if owner.CourseID == "" && owner.UserID == "" {
		owner = sess.Owner
	}
	if !owner.Valid() {
		return 0, fmt.Errorf("%w: course and user are required", quiztree.ErrInvalidArgument)
	}
	sess.credited = true
	o.opts.Store.Delete(sess.ID)

	points := completed * ranking.PointsPerCompleted
	if points > 0 {
		o.report(ctx, ranking.Award{Owner: owner, Points: points, Reason: "completed", SessionID: sessionID})
	}
	if o.opts.Events != nil {
		err := o.opts.Events.AppendSession(ctx, store.SessionEventData{
			SessionID:     sessionID,
			Action:        store.SessionCompleted,
			CourseID:      owner.CourseID,
			UserID:        owner.UserID,
			CoreQuestions: completed,
		})
		if err != nil {
			o.log.Warn("record completion failed", "session", sessionID, "error", err)
		}
	}
	return points, nil
}

func pointsFor(cat evaluator.Category, grafted int) (int, string) {
	switch {
	case cat == evaluator.CategoryPerfect:
		return ranking.PointsPerfect, string(cat)
	case cat == evaluator.CategoryCorrect:
		return ranking.PointsCorrect, string(cat)
	case grafted > 0:
		return ranking.PointsRefinements, "refinements"
	}
	return 0, ""
}

// report credits points. The turn is already committed, so a failure is
// only logged.
func (o *Orchestrator) report(ctx context.Context, a ranking.Award) {
	if o.opts.Reporter == nil || !a.Valid() {
		return
	}
	if err := o.opts.Reporter.Report(ctx, a); err != nil {
		o.log.Warn("points report failed",
			"session", a.SessionID,
			"course", a.CourseID,
			"user", a.UserID,
			"points", a.Points,
			"error", err,
		)
	}
}

func (o *Orchestrator) recordAnswer(ctx context.Context, sess *Session, node *quiztree.Node, t *turn, created int) {
	if o.opts.Events == nil {
		return
	}
	err := o.opts.Events.AppendAnswer(ctx, store.AnswerEventData{
		SessionID:          sess.ID,
		NodeID:             int(node.ID()),
		Kind:               node.Kind().String(),
		Question:           node.Question(),
		Answer:             t.answer,
		Category:           string(t.result.Category),
		Feedback:           t.result.Feedback,
		Attempt:            t.result.Attempt,
		RefinementsCreated: created,
	})
	if err != nil {
		o.log.Warn("record answer failed", "session", sess.ID, "error", err)
	}
}

func (o *Orchestrator) recordSession(ctx context.Context, sess *Session, action, summary string) {
	if o.opts.Events == nil {
		return
	}
	err := o.opts.Events.AppendSession(ctx, store.SessionEventData{
		SessionID:     sess.ID,
		Action:        action,
		CourseID:      sess.Owner.CourseID,
		UserID:        sess.Owner.UserID,
		CoreQuestions: sess.total,
		Summary:       summary,
	})
	if err != nil {
		o.log.Warn("record session event failed", "session", sess.ID, "action", action, "error", err)
	}
}
