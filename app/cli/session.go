package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lysyi3m/blepo/app/database"
	"github.com/lysyi3m/blepo/app/player"
	"github.com/lysyi3m/blepo/app/video"
	"github.com/lysyi3m/blepo/app/watch"
)

const prompt = "\nEnter number to play, w<number> to mark watched, q to quit: "

// PlayerFactory builds the player on first use so that a missing player
// binary does not block listing or marking.
type PlayerFactory func() (player.Player, error)

type Session struct {
	videos        []video.Video
	store         database.WatchedStore
	newPlayer     PlayerFactory
	in            *bufio.Scanner
	out           io.Writer
	maxTitleWidth int
}

func NewSession(videos []video.Video, store database.WatchedStore, newPlayer PlayerFactory, in io.Reader, out io.Writer) *Session {
	return &Session{
		videos:        videos,
		store:         store,
		newPlayer:     newPlayer,
		in:            bufio.NewScanner(in),
		out:           out,
		maxTitleWidth: 80,
	}
}

// Run lists the videos and handles commands until the user quits, input
// ends or a video is played. Store and player failures end the session.
func (s *Session) Run() error {
	WriteListing(s.out, s.videos, s.maxTitleWidth)
	if len(s.videos) == 0 {
		return nil
	}

	for {
		fmt.Fprint(s.out, prompt)

		if !s.in.Scan() {
			return s.in.Err()
		}
		input := strings.TrimSpace(s.in.Text())

		if input == "" || input == "q" {
			return nil
		}

		markOnly := false
		numStr := input
		if rest, ok := strings.CutPrefix(input, "w"); ok {
			markOnly = true
			numStr = rest
		}

		v, ok := s.selectVideo(input, numStr)
		if !ok {
			continue
		}

		if markOnly {
			if err := watch.MarkOnly(v, s.store); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Marked as watched: %s [%s]\n", v.Title, v.ChannelName)
			continue
		}

		p, err := s.newPlayer()
		if err != nil {
			return err
		}
		if err := watch.MarkAndPlay(v, s.store, p); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Playing: %s [%s]\n", v.Title, v.ChannelName)
		return nil
	}
}

func (s *Session) selectVideo(input, numStr string) (video.Video, bool) {
	n, err := strconv.Atoi(numStr)
	if err != nil {
		fmt.Fprintf(s.out, "invalid number: %s\n", input)
		return video.Video{}, false
	}

	index, err := video.ParseSelectionIndex(n)
	if err != nil {
		fmt.Fprintf(s.out, "%v\n", err)
		return video.Video{}, false
	}

	if index.Offset() >= len(s.videos) {
		fmt.Fprintf(s.out, "video #%d not found (have %d unwatched videos)\n", index.Number(), len(s.videos))
		return video.Video{}, false
	}

	return s.videos[index.Offset()], true
}
