// Package analysis reshapes cached timeline and summary JSON into flat
// tables: one row per discrete event, or one row per (frame, participant)
// snapshot, joined against participant metadata so participant ids become
// champion names, teams, roles, and outcomes.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tidwall/gjson"

	"lolanalysis/internal/league"
	"lolanalysis/internal/tabular"
)

// Reshaper builds tables for a single match out of the cached accessor.
type Reshaper struct {
	session *league.Session
	log     *slog.Logger
}

// NewReshaper wires a reshaper to the session it reads through.
func NewReshaper(session *league.Session) *Reshaper {
	return &Reshaper{session: session, log: slog.Default()}
}

// EventJoinOptions toggles the three event-specific participant joins.
// Skipping one omits its suffixed columns entirely instead of leaving them
// null. The acting-participant join always runs.
type EventJoinOptions struct {
	Creator bool // ward-type events reference a creator
	Victim  bool // kill-type events reference a victim
	Killer  bool // kill-type events reference a killer
}

// AllEventJoins enables every optional join.
func AllEventJoins() EventJoinOptions {
	return EventJoinOptions{Creator: true, Victim: true, Killer: true}
}

// rowFromObject flattens one JSON object into a table row, keeping the
// document's key order so columns come out deterministic.
func rowFromObject(obj gjson.Result) (tabular.Row, []string) {
	row := make(tabular.Row)
	var order []string
	obj.ForEach(func(key, value gjson.Result) bool {
		row[key.String()] = value.Value()
		order = append(order, key.String())
		return true
	})
	return row, order
}

// participantMeta cross-references the timeline's lightweight participant
// list with the summary's detailed one on the shared puuid, projecting the
// handful of human-readable fields every join needs.
func participantMeta(timeline, summary gjson.Result) (*tabular.Table, error) {
	detailed := make(map[string]gjson.Result)
	summary.Get("info.participants").ForEach(func(_, p gjson.Result) bool {
		detailed[p.Get("puuid").String()] = p
		return true
	})

	projected := []string{"summonerName", "summonerId", "championName", "individualPosition", "teamId", "win"}
	order := append([]string{"participantId", "puuid"}, projected...)

	meta := tabular.New()
	timeline.Get("info.participants").ForEach(func(_, p gjson.Result) bool {
		puuid := p.Get("puuid").String()
		det, ok := detailed[puuid]
		if !ok {
			return true
		}
		row := tabular.Row{
			"participantId": p.Get("participantId").Value(),
			"puuid":         puuid,
		}
		for _, field := range projected {
			row[field] = det.Get(field).Value()
		}
		meta.Append(row, order)
		return true
	})

	if meta.Len() == 0 {
		return nil, fmt.Errorf("no participants shared between timeline and summary: %w", tabular.ErrEmptyTable)
	}
	return meta, nil
}

// EventTimeline flattens every frame's event sequence into one row per event,
// in frame order with within-frame order preserved, then attaches participant
// metadata for the acting participant and (optionally) the creator, victim,
// and killer references. Events without a referenced participant (a turret
// kill, say) keep their row with the suffixed columns empty.
func (r *Reshaper) EventTimeline(ctx context.Context, matchID string, opts EventJoinOptions) (*tabular.Table, error) {
	timelineRaw, err := r.session.MatchTimeline(ctx, matchID)
	if err != nil {
		return nil, err
	}
	summaryRaw, err := r.session.MatchSummary(ctx, matchID)
	if err != nil {
		return nil, err
	}

	timeline := gjson.ParseBytes(timelineRaw)
	summary := gjson.ParseBytes(summaryRaw)

	frames := timeline.Get("info.frames")
	if !frames.Exists() || len(frames.Array()) == 0 {
		return nil, fmt.Errorf("timeline for %s has no frames: %w", matchID, tabular.ErrEmptyTable)
	}

	events := tabular.New()
	frames.ForEach(func(_, frame gjson.Result) bool {
		frame.Get("events").ForEach(func(_, event gjson.Result) bool {
			row, order := rowFromObject(event)
			events.Append(row, order)
			return true
		})
		return true
	})

	if events.Len() == 0 {
		return nil, fmt.Errorf("timeline for %s has no events: %w", matchID, tabular.ErrEmptyTable)
	}

	meta, err := participantMeta(timeline, summary)
	if err != nil {
		return nil, err
	}

	out := events.LeftJoin(meta, "participantId", "participantId", "_info")
	if opts.Creator {
		out = out.LeftJoin(meta, "creatorId", "participantId", "_creator")
	}
	if opts.Victim {
		out = out.LeftJoin(meta, "victimId", "participantId", "_victim")
	}
	if opts.Killer {
		out = out.LeftJoin(meta, "killerId", "participantId", "_killer")
	}

	return out, nil
}

// ChampionTimeline flattens every frame's per-participant snapshot into one
// row per (frame, participant), stamped with the frame timestamp, joined
// against participant metadata, with a time column in minutes.
func (r *Reshaper) ChampionTimeline(ctx context.Context, matchID string) (*tabular.Table, error) {
	timelineRaw, err := r.session.MatchTimeline(ctx, matchID)
	if err != nil {
		return nil, err
	}
	summaryRaw, err := r.session.MatchSummary(ctx, matchID)
	if err != nil {
		return nil, err
	}

	timeline := gjson.ParseBytes(timelineRaw)
	summary := gjson.ParseBytes(summaryRaw)

	frames := timeline.Get("info.frames")
	if !frames.Exists() || len(frames.Array()) == 0 {
		return nil, fmt.Errorf("timeline for %s has no frames: %w", matchID, tabular.ErrEmptyTable)
	}

	snapshots := tabular.New()
	frames.ForEach(func(_, frame gjson.Result) bool {
		timestamp := frame.Get("timestamp").Value()
		frame.Get("participantFrames").ForEach(func(_, snapshot gjson.Result) bool {
			row, order := rowFromObject(snapshot)
			row["timestamp"] = timestamp
			snapshots.Append(row, append(order, "timestamp"))
			return true
		})
		return true
	})

	if snapshots.Len() == 0 {
		return nil, fmt.Errorf("timeline for %s has no participant frames: %w", matchID, tabular.ErrEmptyTable)
	}

	meta, err := participantMeta(timeline, summary)
	if err != nil {
		return nil, err
	}

	out := snapshots.InnerJoin(meta, "participantId", "participantId", "_info")

	// Minutes since game start; timestamps arrive in milliseconds.
	for _, row := range out.Rows {
		if ts, ok := row["timestamp"].(float64); ok {
			row["time"] = ts / 1000 / 60
		}
	}
	out.AddColumn("time")

	return out, nil
}

// statColumns are the nested snapshot sub-objects ExpandStats flattens.
var statColumns = []string{"championStats", "damageStats"}

// ExpandStats widens the championStats and damageStats sub-objects of a
// champion-timeline table into top-level columns. The key set is discovered
// from row 0 only: rows whose sub-object diverges from row 0's keys silently
// get missing values for the divergent keys. Callers must control for
// upstream schema drift between data versions.
func ExpandStats(t *tabular.Table) (*tabular.Table, error) {
	if t.Len() == 0 {
		return nil, tabular.ErrEmptyTable
	}

	out := tabular.New()
	dropped := make(map[string]bool, len(statColumns))
	expandedKeys := make(map[string][]string, len(statColumns))

	for _, stat := range statColumns {
		first, ok := t.Rows[0][stat].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row 0 has no %s object", stat)
		}
		keys := make([]string, 0, len(first))
		for k := range first {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		expandedKeys[stat] = keys
		dropped[stat] = true
	}

	for _, row := range t.Rows {
		newRow := make(tabular.Row, len(row))
		order := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			if dropped[c] {
				continue
			}
			if v, ok := row[c]; ok {
				newRow[c] = v
			}
			order = append(order, c)
		}
		for _, stat := range statColumns {
			sub, _ := row[stat].(map[string]any)
			for _, key := range expandedKeys[stat] {
				if v, ok := sub[key]; ok {
					newRow[key] = v
				}
				order = append(order, key)
			}
		}
		out.Append(newRow, order)
	}

	return out, nil
}

// MasteryTable joins the summoner's champion masteries against the champion
// catalog, producing name, championLevel, championPoints, and lastPlayTime
// per champion. Mastery is never cached, so every call goes upstream.
func (r *Reshaper) MasteryTable(ctx context.Context, name string) (*tabular.Table, error) {
	masteriesRaw, err := r.session.ChampionMasteries(ctx, name)
	if err != nil {
		return nil, err
	}
	catalogRaw, err := r.session.ChampionCatalog(ctx)
	if err != nil {
		return nil, err
	}

	// catalog: champion key -> display name, keyed by the numeric id string.
	championNames := make(map[string]string)
	gjson.ParseBytes(catalogRaw).ForEach(func(_, champ gjson.Result) bool {
		championNames[champ.Get("key").String()] = champ.Get("name").String()
		return true
	})

	out := tabular.New()
	gjson.ParseBytes(masteriesRaw).ForEach(func(_, m gjson.Result) bool {
		id, _ := tabular.KeyString(m.Get("championId").Value())
		out.Append(tabular.Row{
			"name":           championNames[id],
			"championId":     m.Get("championId").Value(),
			"championLevel":  m.Get("championLevel").Value(),
			"championPoints": m.Get("championPoints").Value(),
			"lastPlayTime":   m.Get("lastPlayTime").Value(),
		}, []string{"name", "championId", "championLevel", "championPoints", "lastPlayTime"})
		return true
	})

	if out.Len() == 0 {
		return nil, fmt.Errorf("no masteries returned for %s: %w", name, tabular.ErrEmptyTable)
	}
	return out, nil
}

// CombineMatchSummaries accumulates the named summoner's participant row from
// each listed match, tagged with its match id. A match that cannot be
// fetched is logged and skipped; one missing historical match never aborts
// the batch.
func (r *Reshaper) CombineMatchSummaries(ctx context.Context, summonerName string, matchIDs []string) (*tabular.Table, error) {
	out := tabular.New()

	for _, matchID := range matchIDs {
		summaryRaw, err := r.session.MatchSummary(ctx, matchID)
		if err != nil {
			r.log.Warn("unable to get match summary", "match_id", matchID, "error", err)
			continue
		}

		gjson.GetBytes(summaryRaw, "info.participants").ForEach(func(_, p gjson.Result) bool {
			if p.Get("summonerName").String() != summonerName {
				return true
			}
			row, order := rowFromObject(p)
			row["match_id"] = matchID
			out.Append(row, append(order, "match_id"))
			return true
		})
	}

	return out, nil
}
