package scheduler

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbot-dev/finbot/model"
)

type sentMessage struct {
	telegramID int64
	text       string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *fakeNotifier) SendMessage(telegramID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{telegramID: telegramID, text: text})
	return nil
}

func (n *fakeNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

func (n *fakeNotifier) fail(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

type fakeUserService struct {
	telegramIDs map[int64]int64
}

func (s *fakeUserService) Resolve(telegramID int64) (int64, error) {
	for userID, tgID := range s.telegramIDs {
		if tgID == telegramID {
			return userID, nil
		}
	}
	return 0, model.ErrNotFound
}

func (s *fakeUserService) TelegramID(userID int64) (int64, error) {
	telegramID, ok := s.telegramIDs[userID]
	if !ok {
		return 0, model.ErrNotFound
	}
	return telegramID, nil
}

type fakeReminderService struct {
	mu        sync.Mutex
	reminders map[int64]model.Reminder
}

func newFakeReminderService(reminders ...model.Reminder) *fakeReminderService {
	s := &fakeReminderService{reminders: make(map[int64]model.Reminder)}
	for _, r := range reminders {
		s.reminders[r.ID] = r
	}
	return s
}

func (s *fakeReminderService) SaveReminder(userID int64, text string, remindAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := int64(len(s.reminders) + 1)
	s.reminders[id] = model.Reminder{ID: id, UserID: userID, Text: text, RemindAt: remindAt}
	return id, nil
}

func (s *fakeReminderService) GetReminders(userID int64) ([]model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reminders []model.Reminder
	for _, r := range s.reminders {
		if r.UserID == userID {
			reminders = append(reminders, r)
		}
	}
	return reminders, nil
}

func (s *fakeReminderService) GetDueReminders(now time.Time) ([]model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []model.Reminder
	for _, r := range s.reminders {
		if !r.RemindAt.After(now) {
			due = append(due, r)
		}
	}
	return due, nil
}

func (s *fakeReminderService) DeleteReminderByID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reminders, id)
	return nil
}

func (s *fakeReminderService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reminders)
}

type fakeGoalService struct {
	mu    sync.Mutex
	goals map[int64]model.FinancialGoal

	// afterSnapshot runs once GetAllGoals has taken its snapshot, letting
	// tests interleave store changes between candidate pick and close.
	afterSnapshot func()
}

func newFakeGoalService(goals ...model.FinancialGoal) *fakeGoalService {
	s := &fakeGoalService{goals: make(map[int64]model.FinancialGoal)}
	for _, g := range goals {
		s.goals[g.ID] = g
	}
	return s
}

func (s *fakeGoalService) SaveGoal(userID int64, name string, targetAmount decimal.Decimal, deadline time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := int64(len(s.goals) + 1)
	s.goals[id] = model.FinancialGoal{
		ID:           id,
		UserID:       userID,
		Name:         name,
		TargetAmount: targetAmount,
		Deadline:     deadline,
	}
	return id, nil
}

func (s *fakeGoalService) GetGoals(userID int64) ([]model.FinancialGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var goals []model.FinancialGoal
	for _, g := range s.goals {
		if g.UserID == userID {
			goals = append(goals, g)
		}
	}
	return goals, nil
}

func (s *fakeGoalService) GetAllGoals() ([]model.FinancialGoal, error) {
	s.mu.Lock()
	var goals []model.FinancialGoal
	for _, g := range s.goals {
		goals = append(goals, g)
	}
	s.mu.Unlock()
	if s.afterSnapshot != nil {
		s.afterSnapshot()
	}
	return goals, nil
}

func (s *fakeGoalService) Contribute(userID int64, goalID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, model.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return decimal.Zero, model.ErrNotFound
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	s.goals[goalID] = g
	return g.CurrentAmount, nil
}

func (s *fakeGoalService) CloseGoal(id int64, notify func(model.FinancialGoal) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return model.ErrNotFound
	}
	if err := notify(g); err != nil {
		return err
	}
	delete(s.goals, id)
	return nil
}

func (s *fakeGoalService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.goals)
}

func newTestScheduler(
	goalService model.GoalService,
	reminderService model.ReminderService,
	userService model.UserService,
	notifier Notifier,
) *Scheduler {
	return New(goalService, reminderService, userService, notifier, nil)
}

func TestSweepRemindersDeliversDueOnce(t *testing.T) {
	now := time.Now()
	reminderService := newFakeReminderService(
		model.Reminder{ID: 1, UserID: 10, Text: "pay rent", RemindAt: now.Add(-time.Minute)},
		model.Reminder{ID: 2, UserID: 10, Text: "call bank", RemindAt: now.Add(time.Hour)},
	)
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}

	s := newTestScheduler(newFakeGoalService(), reminderService, userService, notifier)
	s.sweepReminders(now)

	sent := notifier.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if sent[0].telegramID != 555 {
		t.Errorf("sent to %d, want 555", sent[0].telegramID)
	}
	if !strings.Contains(sent[0].text, "pay rent") {
		t.Errorf("message %q does not contain reminder text", sent[0].text)
	}
	if reminderService.count() != 1 {
		t.Errorf("%d reminders left, want 1", reminderService.count())
	}

	s.sweepReminders(now)
	if len(notifier.messages()) != 1 {
		t.Errorf("reminder fired twice across sweeps")
	}
}

func TestSweepRemindersKeepsRowOnFailedDelivery(t *testing.T) {
	now := time.Now()
	reminderService := newFakeReminderService(
		model.Reminder{ID: 1, UserID: 10, Text: "pay rent", RemindAt: now.Add(-time.Minute)},
	)
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}
	notifier.fail(errors.New("telegram unreachable"))

	s := newTestScheduler(newFakeGoalService(), reminderService, userService, notifier)
	s.sweepReminders(now)

	if reminderService.count() != 1 {
		t.Fatalf("reminder was deleted despite failed delivery")
	}

	notifier.fail(nil)
	s.sweepReminders(now)

	if len(notifier.messages()) != 1 {
		t.Errorf("sent %d messages, want 1", len(notifier.messages()))
	}
	if reminderService.count() != 0 {
		t.Errorf("reminder not deleted after successful delivery")
	}
}

func TestSweepRemindersIsolatesBadRows(t *testing.T) {
	now := time.Now()
	reminderService := newFakeReminderService(
		model.Reminder{ID: 1, UserID: 99, Text: "orphaned", RemindAt: now.Add(-time.Minute)},
		model.Reminder{ID: 2, UserID: 10, Text: "pay rent", RemindAt: now.Add(-time.Minute)},
	)
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}

	s := newTestScheduler(newFakeGoalService(), reminderService, userService, notifier)
	s.sweepReminders(now)

	sent := notifier.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if !strings.Contains(sent[0].text, "pay rent") {
		t.Errorf("wrong reminder delivered: %q", sent[0].text)
	}
	if reminderService.count() != 1 {
		t.Errorf("%d reminders left, want the orphaned one to remain", reminderService.count())
	}
}

func TestSweepGoalsMissed(t *testing.T) {
	now := time.Now()
	goalService := newFakeGoalService(model.FinancialGoal{
		ID:            1,
		UserID:        10,
		Name:          "Car",
		TargetAmount:  decimal.NewFromInt(300000),
		CurrentAmount: decimal.NewFromInt(2000),
		Deadline:      now.AddDate(0, 0, -1),
	})
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}

	s := newTestScheduler(goalService, newFakeReminderService(), userService, notifier)
	s.sweepGoals(now)

	sent := notifier.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if !strings.Contains(sent[0].text, "did not reach") {
		t.Errorf("message %q is not a missed-goal notification", sent[0].text)
	}
	if !strings.Contains(sent[0].text, "298000") {
		t.Errorf("message %q does not name the shortfall", sent[0].text)
	}
	if goalService.count() != 0 {
		t.Errorf("goal not deleted after deadline")
	}

	s.sweepGoals(now)
	if len(notifier.messages()) != 1 {
		t.Errorf("goal evaluated twice")
	}
}

func TestSweepGoalsAchieved(t *testing.T) {
	now := time.Now()
	goalService := newFakeGoalService(model.FinancialGoal{
		ID:            1,
		UserID:        10,
		Name:          "Vacation",
		TargetAmount:  decimal.NewFromInt(1500),
		CurrentAmount: decimal.NewFromInt(1500),
		Deadline:      now,
	})
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}

	s := newTestScheduler(goalService, newFakeReminderService(), userService, notifier)
	s.sweepGoals(now)

	sent := notifier.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if !strings.Contains(sent[0].text, "Congratulations") {
		t.Errorf("message %q is not an achieved notification", sent[0].text)
	}
	if goalService.count() != 0 {
		t.Errorf("goal not deleted after deadline")
	}
}

func TestSweepGoalsFutureDeadlineUntouched(t *testing.T) {
	now := time.Now()
	goalService := newFakeGoalService(model.FinancialGoal{
		ID:           1,
		UserID:       10,
		Name:         "House",
		TargetAmount: decimal.NewFromInt(500000),
		Deadline:     now.AddDate(0, 1, 0),
	})
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}

	s := newTestScheduler(goalService, newFakeReminderService(), userService, notifier)
	s.sweepGoals(now)

	if len(notifier.messages()) != 0 {
		t.Errorf("goal with future deadline was notified")
	}
	if goalService.count() != 1 {
		t.Errorf("goal with future deadline was deleted")
	}
}

func TestSweepGoalsKeepsRowOnFailedDelivery(t *testing.T) {
	now := time.Now()
	goalService := newFakeGoalService(model.FinancialGoal{
		ID:           1,
		UserID:       10,
		Name:         "Car",
		TargetAmount: decimal.NewFromInt(300000),
		Deadline:     now.AddDate(0, 0, -1),
	})
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}
	notifier.fail(errors.New("telegram unreachable"))

	s := newTestScheduler(goalService, newFakeReminderService(), userService, notifier)
	s.sweepGoals(now)

	if goalService.count() != 1 {
		t.Fatalf("goal was deleted despite failed delivery")
	}

	notifier.fail(nil)
	s.sweepGoals(now)

	if len(notifier.messages()) != 1 {
		t.Errorf("sent %d messages, want 1", len(notifier.messages()))
	}
	if goalService.count() != 0 {
		t.Errorf("goal not deleted after successful delivery")
	}
}

func TestSweepGoalsCountsContributionLandedMidSweep(t *testing.T) {
	now := time.Now()
	goalService := newFakeGoalService(model.FinancialGoal{
		ID:            1,
		UserID:        10,
		Name:          "Car",
		TargetAmount:  decimal.NewFromInt(300000),
		CurrentAmount: decimal.NewFromInt(2000),
		Deadline:      now.AddDate(0, 0, -1),
	})
	goalService.afterSnapshot = func() {
		if _, err := goalService.Contribute(10, 1, decimal.NewFromInt(298000)); err != nil {
			t.Errorf("contribution during sweep failed: %v", err)
		}
	}
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}

	s := newTestScheduler(goalService, newFakeReminderService(), userService, notifier)
	s.sweepGoals(now)

	sent := notifier.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if !strings.Contains(sent[0].text, "Congratulations") {
		t.Errorf("message %q ignores the contribution that funded the goal", sent[0].text)
	}
	if goalService.count() != 0 {
		t.Errorf("goal not deleted after deadline")
	}
}

func TestSweepGoalsSkipsGoalClosedMidSweep(t *testing.T) {
	now := time.Now()
	goalService := newFakeGoalService(model.FinancialGoal{
		ID:           1,
		UserID:       10,
		Name:         "Car",
		TargetAmount: decimal.NewFromInt(300000),
		Deadline:     now.AddDate(0, 0, -1),
	})
	goalService.afterSnapshot = func() {
		if err := goalService.CloseGoal(1, func(model.FinancialGoal) error { return nil }); err != nil {
			t.Errorf("closing goal during sweep failed: %v", err)
		}
	}
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}

	s := newTestScheduler(goalService, newFakeReminderService(), userService, notifier)
	s.sweepGoals(now)

	if len(notifier.messages()) != 0 {
		t.Errorf("already closed goal was notified again")
	}
}

func TestStartRunsImmediateSweep(t *testing.T) {
	now := time.Now()
	reminderService := newFakeReminderService(
		model.Reminder{ID: 1, UserID: 10, Text: "pay rent", RemindAt: now.Add(-time.Minute)},
	)
	userService := &fakeUserService{telegramIDs: map[int64]int64{10: 555}}
	notifier := &fakeNotifier{}

	s := New(newFakeGoalService(), reminderService, userService, notifier, &Options{
		ReminderInterval: time.Hour,
		GoalInterval:     time.Hour,
	})
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(notifier.messages()) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("reminder not delivered by the boot sweep")
}
