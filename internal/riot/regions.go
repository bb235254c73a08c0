package riot

// platformHosts maps a player-facing region code to its platform host.
// Endpoints that operate on a single summoner use this family.
var platformHosts = map[string]string{
	"br":   "https://br1.api.riotgames.com",
	"eune": "https://eun1.api.riotgames.com",
	"euw":  "https://euw1.api.riotgames.com",
	"jp":   "https://jp1.api.riotgames.com",
	"kr":   "https://kr.api.riotgames.com",
	"la1":  "https://la1.api.riotgames.com",
	"la2":  "https://la2.api.riotgames.com",
	"na":   "https://na1.api.riotgames.com",
	"oc":   "https://oc1.api.riotgames.com",
	"tr":   "https://tr1.api.riotgames.com",
	"ru":   "https://ru.api.riotgames.com",
}

// regionalClusters groups regions into the three continental routing hosts
// used by the match-v5 endpoints.
var regionalClusters = map[string]string{
	"eune": "https://europe.api.riotgames.com",
	"euw":  "https://europe.api.riotgames.com",
	"ru":   "https://europe.api.riotgames.com",
	"tr":   "https://europe.api.riotgames.com",
	"br":   "https://americas.api.riotgames.com",
	"la1":  "https://americas.api.riotgames.com",
	"la2":  "https://americas.api.riotgames.com",
	"na":   "https://americas.api.riotgames.com",
	"jp":   "https://asia.api.riotgames.com",
	"kr":   "https://asia.api.riotgames.com",
	"oc":   "https://asia.api.riotgames.com",
}

// Regions returns the supported region codes.
func Regions() []string {
	regions := make([]string, 0, len(platformHosts))
	for r := range platformHosts {
		regions = append(regions, r)
	}
	return regions
}
