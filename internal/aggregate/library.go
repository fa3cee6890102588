package aggregate

// Library holds the per-song, per-artist and per-album totals, each in the
// order the key was first encountered.
type Library struct {
	Songs   []SongAggregate
	Artists []ArtistAggregate
	Albums  []AlbumAggregate

	songIndex map[SongKey]int
}

// HasSong reports whether the song appears in the library.
func (l *Library) HasSong(key SongKey) bool {
	_, ok := l.songIndex[key]
	return ok
}

type artistAcc struct {
	ArtistAggregate
	tracks map[string]struct{}
}

type albumAcc struct {
	AlbumAggregate
	tracks map[string]struct{}
}

// ComputeLibrary accumulates song, artist and album totals. Only events with
// both a track and an artist take part; album totals additionally need an
// album name.
func ComputeLibrary(events []PlayEvent) *Library {
	songIndex := make(map[SongKey]int)
	var songs []SongAggregate

	artistIndex := make(map[string]*artistAcc)
	var artistOrder []*artistAcc

	albumIndex := make(map[AlbumKey]*albumAcc)
	var albumOrder []*albumAcc

	getOrCreateArtist := func(name string) *artistAcc {
		if a, ok := artistIndex[name]; ok {
			return a
		}
		a := &artistAcc{
			ArtistAggregate: ArtistAggregate{Name: name},
			tracks:          make(map[string]struct{}),
		}
		artistIndex[name] = a
		artistOrder = append(artistOrder, a)
		return a
	}

	getOrCreateAlbum := func(key AlbumKey) *albumAcc {
		if a, ok := albumIndex[key]; ok {
			return a
		}
		a := &albumAcc{
			AlbumAggregate: AlbumAggregate{Name: key.Album, Artist: key.Artist},
			tracks:         make(map[string]struct{}),
		}
		albumIndex[key] = a
		albumOrder = append(albumOrder, a)
		return a
	}

	for _, e := range events {
		if !e.HasSong() {
			continue
		}

		key := e.Song()
		i, ok := songIndex[key]
		if !ok {
			i = len(songs)
			songIndex[key] = i
			songs = append(songs, SongAggregate{Track: key.Track, Artist: key.Artist})
		}
		songs[i].TotalMsPlayed += e.MsPlayed
		songs[i].PlayCount++

		artist := getOrCreateArtist(e.ArtistName)
		artist.TotalMsPlayed += e.MsPlayed
		artist.PlayCount++
		artist.tracks[e.TrackName] = struct{}{}

		if e.AlbumName == "" {
			continue
		}
		album := getOrCreateAlbum(AlbumKey{Album: e.AlbumName, Artist: e.ArtistName})
		album.TotalMsPlayed += e.MsPlayed
		album.PlayCount++
		album.tracks[e.TrackName] = struct{}{}
	}

	lib := &Library{
		Songs:     songs,
		Artists:   make([]ArtistAggregate, 0, len(artistOrder)),
		Albums:    make([]AlbumAggregate, 0, len(albumOrder)),
		songIndex: songIndex,
	}
	if lib.Songs == nil {
		lib.Songs = []SongAggregate{}
	}
	for _, a := range artistOrder {
		agg := a.ArtistAggregate
		agg.UniqueSongs = len(a.tracks)
		lib.Artists = append(lib.Artists, agg)
	}
	for _, a := range albumOrder {
		agg := a.AlbumAggregate
		agg.UniqueSongs = len(a.tracks)
		lib.Albums = append(lib.Albums, agg)
	}
	return lib
}
