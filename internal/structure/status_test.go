package structure

import "testing"

func TestClassify(t *testing.T) {
	origin := "# Title\n\nBody\n"

	t.Run("missing translation is new", func(t *testing.T) {
		res := Classify("docs/a.mdx", origin, nil)
		if res.Status != StatusNew {
			t.Fatalf("Status = %s, want new", res.Status)
		}
		if len(res.Reasons) != 1 || res.Reasons[0] != ReasonMissingTranslation {
			t.Fatalf("unexpected reasons: %v", res.Reasons)
		}
	})

	t.Run("matching translation is done", func(t *testing.T) {
		translated := "# 제목\n\n본문\n"
		res := Classify("docs/a.mdx", origin, &translated)
		if res.Status != StatusDone {
			t.Fatalf("Status = %s, want done (reasons %v)", res.Status, res.Reasons)
		}
		if res.Reasons == nil || len(res.Reasons) != 0 {
			t.Fatalf("done result must carry an empty, non-nil reason list: %#v", res.Reasons)
		}
	})

	t.Run("drifted translation needs sync", func(t *testing.T) {
		translated := "본문\n"
		res := Classify("docs/a.mdx", origin, &translated)
		if res.Status != StatusSync || len(res.Reasons) == 0 {
			t.Fatalf("expected sync with reasons, got %+v", res)
		}
	})
}
