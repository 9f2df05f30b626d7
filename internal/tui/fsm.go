package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/looplab/fsm"
)

type machine struct {
	app *App
	fsm *fsm.FSM
}

const (
	// events
	evCancelled   = "cancelled"
	evConfirmed   = "confirmed"
	evDeleted     = "deleted"
	evFetched     = "fetched"
	evFailed      = "failed"
	evNothingToDo = "nothing_to_do"

	// states
	stFetching   = "fetching"
	stConfirming = "confirming"
	stDeleting   = "deleting"
	stNothing    = "nothing"
	stDone       = "done"

	// metadata
	metaMessages = "messages"
)

func initFSM(app *App) *fsm.FSM {
	m := machine{app: app}
	sm := fsm.NewFSM(
		stFetching,
		fsm.Events{
			{Name: evFetched, Src: []string{stFetching}, Dst: stConfirming},
			{Name: evNothingToDo, Src: []string{stFetching}, Dst: stNothing},
			{Name: evFailed, Src: []string{stFetching}, Dst: stDone},
			{Name: evConfirmed, Src: []string{stConfirming}, Dst: stDeleting},
			{Name: evDeleted, Src: []string{stDeleting}, Dst: stDone},
			// cancel
			{Name: evCancelled, Src: []string{stFetching, stConfirming, stNothing}, Dst: stDone},
		},
		fsm.Callbacks{
			m.enter("state"): func(_ context.Context, e *fsm.Event) {
				m.app.log.Debugf("*** transition: %q -> %q\n", e.Src, e.Dst)
				m.app.pages.ShowPage(e.Dst)
			},
			// states
			m.leave(stConfirming): m.hidePage,
			m.leave(stNothing):    m.hidePage,
			m.enter(stDone):       m.enterDone,
			// events
			m.after(evCancelled): m.afterCancelled,
		},
	)
	m.fsm = sm

	return m.fsm
}

func (*machine) leave(state string) string {
	return "leave_" + state
}

func (*machine) enter(state string) string {
	return "enter_" + state
}

func (*machine) after(event string) string {
	return "after_" + event
}

//
// States
//

func (m *machine) hidePage(_ context.Context, e *fsm.Event) {
	m.app.pages.HidePage(e.Src)
}

func (m *machine) enterDone(context.Context, *fsm.Event) {
	m.cleanUp()
	m.app.logf("Finished. %s.", infoText)
}

//
// Events
//

func (m *machine) afterCancelled(context.Context, *fsm.Event) {
	m.app.logf("Operation cancelled")
}

func (m *machine) cleanUp() {
	m.fsm.SetMetadata(metaMessages, nil)
}

func metadata[T any](fsm *fsm.FSM, key string) (T, error) {
	var ret T
	val, ok := fsm.Metadata(key)
	if !ok || val == nil {
		return ret, fmt.Errorf("value of type %T not present in metadata", ret)
	}
	ret, ok = val.(T)
	if !ok {
		return ret, fmt.Errorf("invalid type (metadata: %T, want %T)", val, ret)
	}
	return ret, nil
}

// Visualise writes the state machine graph in graphviz format to the file.
func (app *App) Visualise(filename string) error {
	return os.WriteFile(filename, []byte(fsm.Visualize(app.fsm)), 0666)
}
