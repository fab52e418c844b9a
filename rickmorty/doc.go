// Package rickmorty provides typed fetchers for the Rick and Morty REST API.
//
// The fetchers sit on top of an httpclient.Client and translate the
// upstream's resource references into ids:
//
//	api := rickmorty.NewClient(httpClient, logger)
//
//	page, err := api.GetCharacters(ctx, 1, rickmorty.CharacterFilter{Name: "rick", Status: rickmorty.StatusAlive})
//	if err != nil {
//		return err
//	}
//
//	episodes, err := api.GetEpisodesForCharacter(ctx, page.Results[0])
//
// Batched lookups (GetEpisodes, GetCharactersByIDs) issue no call for an
// empty id list, a single-item call for one id, and one comma-joined call
// otherwise.
package rickmorty
