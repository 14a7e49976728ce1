package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"handoff/internal/domain"
)

var defaultEndpoints = map[domain.Platform]domain.Endpoint{
	domain.PlatformWechat: domain.EndpointWechatFriend,
	domain.PlatformWeibo:  domain.EndpointWeiboTimeline,
}

type shareFlags struct {
	platform    string
	endpoint    string
	title       string
	description string
	thumbnail   string
	waitFlags
}

func (f *shareFlags) target() (domain.Platform, domain.Endpoint, error) {
	p := domain.Platform(f.platform)
	if f.endpoint != "" {
		return p, domain.Endpoint(f.endpoint), nil
	}
	e, ok := defaultEndpoints[p]
	if !ok {
		return "", "", fmt.Errorf("no default endpoint for platform %q, pass --endpoint", f.platform)
	}
	return p, e, nil
}

func (f *shareFlags) media() (domain.Media, error) {
	m := domain.Media{Title: f.title, Description: f.description}
	if f.thumbnail != "" {
		data, err := os.ReadFile(f.thumbnail)
		if err != nil {
			return m, fmt.Errorf("read thumbnail: %w", err)
		}
		m.Thumbnail = data
	}
	return m, nil
}

func newShareCommand(a *app) *cobra.Command {
	f := &shareFlags{}
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share a message through a peer app",
		Example: `  handoffctl share text "hello" --platform wechat --endpoint wechat.timeline
  handoffctl share link https://example.com --kind web_page --title Example
  handoffctl share image photo.jpg --platform weibo --wait`,
	}
	cmd.PersistentFlags().StringVar(&f.platform, "platform", string(domain.PlatformWechat), "Peer platform (wechat, weibo)")
	cmd.PersistentFlags().StringVar(&f.endpoint, "endpoint", "", "Target endpoint, defaults per platform")
	cmd.PersistentFlags().StringVar(&f.title, "title", "", "Media title")
	cmd.PersistentFlags().StringVar(&f.description, "description", "", "Media description")
	cmd.PersistentFlags().StringVar(&f.thumbnail, "thumbnail", "", "Thumbnail image file")
	f.waitFlags.register(cmd.PersistentFlags())

	send := func(cmd *cobra.Command, msg domain.Message) error {
		p, e, err := f.target()
		if err != nil {
			return err
		}
		id, err := a.client.Share(cmd.Context(), p, e, msg)
		if err != nil {
			return fmt.Errorf("share: %w", err)
		}
		return a.started(cmd, id, f.waitFlags)
	}

	textCmd := &cobra.Command{
		Use:   "text TEXT",
		Short: "Share plain text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd, domain.TextMessage{Text: args[0]})
		},
	}

	var kind, dataLink string
	linkCmd := &cobra.Command{
		Use:   "link URL",
		Short: "Share a web page, video or audio link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			media, err := f.media()
			if err != nil {
				return err
			}
			var msg domain.Message
			switch domain.MessageKind(kind) {
			case domain.KindWebPage:
				msg = domain.WebPageMessage{Media: media, Link: args[0]}
			case domain.KindVideo:
				msg = domain.VideoMessage{Media: media, Link: args[0]}
			case domain.KindAudio:
				msg = domain.AudioMessage{Media: media, Link: args[0], DataLink: dataLink}
			default:
				return fmt.Errorf("unsupported link kind %q (web_page, video, audio)", kind)
			}
			return send(cmd, msg)
		},
	}
	linkCmd.Flags().StringVar(&kind, "kind", string(domain.KindWebPage), "Link kind (web_page, video, audio)")
	linkCmd.Flags().StringVar(&dataLink, "data-link", "", "Audio stream link")

	imageCmd := &cobra.Command{
		Use:   "image FILE",
		Short: "Share an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			media, err := f.media()
			if err != nil {
				return err
			}
			return send(cmd, domain.ImageMessage{Media: media, Data: data})
		},
	}

	cmd.AddCommand(textCmd, linkCmd, imageCmd)
	return cmd
}
