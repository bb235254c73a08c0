package riot

// paramKind says which identifier gets substituted into an endpoint path.
// Resolving the summoner-id and puuid kinds requires a prior summoner-profile
// lookup; the cached accessor performs that resolution before calling here.
type paramKind int

const (
	paramNone paramKind = iota
	paramSummonerName
	paramSummonerID
	paramPUUID
	paramMatchID
)

// endpoint describes one named upstream endpoint: its path template, the
// identifier kind substituted into it, and whether it lives on the
// continental routing host rather than the platform host.
type endpoint struct {
	path     string
	param    paramKind
	regional bool
}

// Endpoint names.
const (
	EndpointSummonerByName  = "summoner-by-name"
	EndpointChampionMastery = "champ-mastery-by-summoner"
	EndpointLiveGame        = "live-game-by-summoner"
	EndpointMatchList       = "match-list"
	EndpointMatchSummary    = "match-summary"
	EndpointMatchTimeline   = "match-timeline"
)

var endpoints = map[string]endpoint{
	EndpointSummonerByName:  {path: "/lol/summoner/v4/summoners/by-name/%s", param: paramSummonerName},
	EndpointChampionMastery: {path: "/lol/champion-mastery/v4/champion-masteries/by-summoner/%s", param: paramSummonerID},
	EndpointLiveGame:        {path: "/lol/spectator/v4/active-games/by-summoner/%s", param: paramSummonerID},
	EndpointMatchList:       {path: "/lol/match/v5/matches/by-puuid/%s/ids", param: paramPUUID, regional: true},
	EndpointMatchSummary:    {path: "/lol/match/v5/matches/%s", param: paramMatchID, regional: true},
	EndpointMatchTimeline:   {path: "/lol/match/v5/matches/%s/timeline", param: paramMatchID, regional: true},
}

// ddragonChampionURL is the static content-distribution template for the
// champion catalog. No credential is attached to this fetch.
const ddragonChampionURL = "https://ddragon.leagueoflegends.com/cdn/%s/data/en_GB/champion.json"
