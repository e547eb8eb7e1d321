package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/q3log/q3log-go/pkg/q3log/event"
)

const (
	initGameDM  = `\sv_floodProtect\1\sv_maxPing\0\sv_minPing\0\sv_maxRate\10000\sv_minRate\0\sv_hostname\Code Miner Server\g_gametype\0\sv_privateClients\2\sv_maxclients\16\sv_allowDownload\0\bot_minplayers\0\dmflags\0\fraglimit\20\timelimit\15\g_maxGameClients\0\capturelimit\8\version\ioq3 1.36 linux-x86_64 Apr 12 2009\protocol\68\mapname\q3dm17\gamename\baseq3\g_needpass\0`
	initGameCTF = `\capturelimit\8\g_maxGameClients\0\timelimit\15\fraglimit\20\dmflags\0\bot_minplayers\0\sv_allowDownload\0\sv_maxclients\16\sv_privateClients\2\g_gametype\4\sv_hostname\Code Miner Server\sv_minRate\0\sv_maxRate\10000\sv_minPing\0\sv_maxPing\0\sv_floodProtect\1\version\ioq3 1.36 linux-x86_64 Apr 12 2009\protocol\68\mapname\Q3TOURNEY6_CTF\gamename\baseq3\g_needpass\0`
	userinfo    = `2 n\Isgalamido\t\1\model\uriel/zael\hmodel\uriel/zael\g_redteam\\g_blueteam\\c1\5\c2\5\hc\100\w\0\l\0\tt\0\tl\0`
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		payload string
		want    event.Payload
	}{
		{
			name:    "client connect",
			event:   "ClientConnect",
			payload: "2",
			want:    event.ClientConnect{ClientID: 2},
		},
		{
			name:    "client begin with spaces",
			event:   "ClientBegin",
			payload: " 2 ",
			want:    event.ClientBegin{ClientID: 2},
		},
		{
			name:    "client disconnect",
			event:   "ClientDisconnect",
			payload: "3",
			want:    event.ClientDisconnect{ClientID: 3},
		},
		{
			name:    "kill by world",
			event:   "Kill",
			payload: "1022 2 22: <world> killed Isgalamido by MOD_TRIGGER_HURT",
			want: event.Kill{
				KillerID:   event.WorldID,
				VictimID:   2,
				Weapon:     event.ModTriggerHurt,
				KillerName: "<world>",
				VictimName: "Isgalamido",
				WeaponName: "MOD_TRIGGER_HURT",
			},
		},
		{
			name:    "kill with victim name containing by",
			event:   "Kill",
			payload: "2 5 7: Isgalamido killed Stand by Me by MOD_ROCKET_SPLASH",
			want: event.Kill{
				KillerID:   2,
				VictimID:   5,
				Weapon:     event.ModRocketSplash,
				KillerName: "Isgalamido",
				VictimName: "Stand by Me",
				WeaponName: "MOD_ROCKET_SPLASH",
			},
		},
		{
			name:    "kill without description",
			event:   "Kill",
			payload: "1022 2 7",
			want:    event.Kill{KillerID: event.WorldID, VictimID: 2, Weapon: event.ModRocketSplash},
		},
		{
			name:    "kill with unusual description",
			event:   "Kill",
			payload: "3 4 10: something odd",
			want:    event.Kill{KillerID: 3, VictimID: 4, Weapon: event.ModRailgun},
		},
		{
			name:    "item",
			event:   "Item",
			payload: "2 ammo_rockets",
			want:    event.Item{ClientID: 2, Item: "ammo_rockets"},
		},
		{
			name:    "say",
			event:   "say",
			payload: "Isgalamido: team blue",
			want:    event.Say{Channel: "say", Text: "Isgalamido: team blue"},
		},
		{
			name:    "sayteam",
			event:   "sayteam",
			payload: "gg",
			want:    event.Say{Channel: "sayteam", Text: "gg"},
		},
		{
			name:    "score",
			event:   "score",
			payload: "77  ping: 3  client: 2 Isgalamido",
			want:    event.Score{ClientID: 2, Score: 77, Ping: 3, Name: "Isgalamido"},
		},
		{
			name:    "negative score with spaced name",
			event:   "score",
			payload: "-77  ping: 3  client: 5 Dono da Bola",
			want:    event.Score{ClientID: 5, Score: -77, Ping: 3, Name: "Dono da Bola"},
		},
		{
			name:    "team score",
			event:   "red",
			payload: "8  blue:6",
			want:    event.TeamScore{Red: 8, Blue: 6},
		},
		{
			name:    "exit",
			event:   "Exit",
			payload: "Capturelimit hit.",
			want:    event.Exit{Reason: "Capturelimit hit."},
		},
		{
			name:    "shutdown",
			event:   "ShutdownGame",
			payload: "",
			want:    event.ShutdownGame{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.event, tt.payload)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecode_InitGame(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		gameType event.GameType
		frag     int
		capture  int
		time     int
	}{
		{"deathmatch", initGameDM, event.Deathmatch, 20, 8, 15},
		{"capture the flag", initGameCTF, event.CaptureTheFlag, 20, 8, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode("InitGame", tt.payload)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			g, ok := got.(event.InitGame)
			if !ok {
				t.Fatalf("Decode() = %T, want event.InitGame", got)
			}
			if g.GameType() != tt.gameType {
				t.Errorf("GameType() = %v, want %v", g.GameType(), tt.gameType)
			}
			limits, err := g.Limits()
			if err != nil {
				t.Fatalf("Limits() error = %v", err)
			}
			if *limits.FragLimit != tt.frag || *limits.CaptureLimit != tt.capture || *limits.TimeLimit != tt.time {
				t.Errorf("Limits() = %d/%d/%d, want %d/%d/%d",
					*limits.FragLimit, *limits.CaptureLimit, *limits.TimeLimit, tt.frag, tt.capture, tt.time)
			}
			if g.Config["sv_hostname"] != "Code Miner Server" {
				t.Errorf("Config[sv_hostname] = %q", g.Config["sv_hostname"])
			}
		})
	}
}

func TestDecode_InitGameMapRules(t *testing.T) {
	t.Run("last duplicate key wins", func(t *testing.T) {
		got, err := Decode("InitGame", `\fraglimit\10\fraglimit\30`)
		if err != nil {
			t.Fatal(err)
		}
		if v := got.(event.InitGame).Config["fraglimit"]; v != "30" {
			t.Errorf("fraglimit = %q, want 30", v)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		got, err := Decode("InitGame", "")
		if err != nil {
			t.Fatal(err)
		}
		g := got.(event.InitGame)
		if len(g.Config) != 0 || g.GameType() != event.Deathmatch {
			t.Errorf("Decode() = %#v, want empty deathmatch config", g)
		}
	})

	t.Run("missing leading backslash", func(t *testing.T) {
		got, err := Decode("InitGame", `g_gametype\4`)
		if err != nil {
			t.Fatal(err)
		}
		if got.(event.InitGame).GameType() != event.CaptureTheFlag {
			t.Error("expected capture the flag")
		}
	})
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name      string
		event     string
		payload   string
		wantCause event.Cause
		wantField string
	}{
		{"unknown event", "Init_Game", `\g_gametype\0`, event.CauseUnknownEventName, ""},
		{"odd map", "InitGame", `\g_gametype\0\fraglimit`, event.CauseMalformedMap, ""},
		{"non numeric limit", "InitGame", `\fraglimit\twenty`, event.CauseNotAnInteger, "fraglimit"},
		{"text in client id", "ClientConnect", "2a", event.CauseNotAnInteger, "client_id"},
		{"underscore client id", "ClientConnect", "_2", event.CauseNotAnInteger, "client_id"},
		{"empty client id", "ClientBegin", "", event.CauseNotAnInteger, "client_id"},
		{"userinfo without id", "ClientUserinfoChanged", `n\Isgalamido\t\1`, event.CauseFieldCountMismatch, "client_id user_info"},
		{"userinfo bad id", "ClientUserinfoChanged", `_2_ n\Isgalamido\t\1`, event.CauseNotAnInteger, "client_id"},
		{"userinfo without name", "ClientUserinfoChanged", `2 not_n\Isgalamido\t\1`, event.CauseMissingKey, "n"},
		{"userinfo odd map", "ClientUserinfoChanged", `2 n\Isgalamido\t`, event.CauseMalformedMap, ""},
		{"kill missing field", "Kill", "1022 2: <world> killed Isgalamido by MOD_FALLING", event.CauseFieldCountMismatch, "killer_id victim_id weapon"},
		{"kill bad killer", "Kill", "x 2 7", event.CauseNotAnInteger, "killer_id"},
		{"kill bad victim", "Kill", "1022 y 7", event.CauseNotAnInteger, "victim_id"},
		{"kill bad weapon", "Kill", "1022 2 MOD_ROCKET", event.CauseNotAnInteger, "weapon"},
		{"score shape", "score", "77 client: 2 Isgalamido", event.CauseFieldCountMismatch, "score ping client"},
		{"score bad ping", "score", "77  ping: x  client: 2 Isgalamido", event.CauseNotAnInteger, "ping"},
		{"team score shape", "red", "8", event.CauseFieldCountMismatch, "red blue"},
		{"team score bad blue", "red", "8  blue:six", event.CauseNotAnInteger, "blue"},
		{"item without class", "Item", "2", event.CauseFieldCountMismatch, "client_id item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.event, tt.payload)
			if err == nil {
				t.Fatalf("Decode() = %#v, want error", got)
			}
			var epe *event.EventParsingError
			if !errors.As(err, &epe) {
				t.Fatalf("Decode() error = %T, want *event.EventParsingError", err)
			}
			if epe.EventName != tt.event {
				t.Errorf("EventName = %q, want %q", epe.EventName, tt.event)
			}
			if epe.Cause != tt.wantCause {
				t.Errorf("Cause = %v, want %v", epe.Cause, tt.wantCause)
			}
			if epe.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", epe.Field, tt.wantField)
			}
		})
	}
}

func TestDecode_Idempotent(t *testing.T) {
	lines := []string{
		`  0:00 InitGame: ` + initGameDM,
		` 20:34 ClientUserinfoChanged: ` + userinfo,
		` 20:54 Kill: 1022 2 22: <world> killed Isgalamido by MOD_TRIGGER_HURT`,
		`10:12 score: 77  ping: 3  client: 2 Isgalamido`,
	}

	for _, raw := range lines {
		l1, err := Split(1, raw)
		if err != nil {
			t.Fatal(err)
		}
		l2, _ := Split(1, raw)
		p1, err1 := Decode(l1.Name, l1.Payload)
		p2, err2 := Decode(l2.Name, l2.Payload)
		if err1 != nil || err2 != nil {
			t.Fatalf("Decode(%q) errors = %v, %v", raw, err1, err2)
		}
		if !reflect.DeepEqual(p1, p2) {
			t.Errorf("Decode(%q) not idempotent: %#v vs %#v", raw, p1, p2)
		}
	}
}
