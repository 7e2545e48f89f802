package add

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/item"
	"tableflip.dev/ordo/pkg/runner/show"
	"tableflip.dev/ordo/pkg/session"
	"tableflip.dev/ordo/pkg/store"
)

func TestAddListThenTask(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()
	sess := session.New()
	sess.SignIn(session.Principal{ID: "alice"})
	svc := app.New(store.NewMemory(), sess, nil)
	defer svc.Close()

	var buf bytes.Buffer
	a := Add{Output: show.Output{Out: &buf}, Service: svc, Target: app.Target{Kind: item.KindList}, Text: "groceries"}
	if err := a.Do(ctx); err != nil {
		t.Fatalf("add list: %v", err)
	}
	a = Add{Output: show.Output{Out: &buf}, Service: svc, Target: app.Target{Kind: item.KindTask, List: "1"}, Text: "milk"}
	if err := a.Do(ctx); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if !strings.Contains(buf.String(), "1 ● milk") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}

	a = Add{Output: show.Output{Out: &buf}, Service: svc, Target: app.Target{Kind: item.KindTask, List: "1"}, Text: "  "}
	if err := a.Do(ctx); !errors.Is(err, item.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
