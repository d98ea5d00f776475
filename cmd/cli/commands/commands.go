package commands

import "github.com/spf13/cobra"

// All returns every command, in the order they appear in help
func All(app *AppContext) []*cobra.Command {
	return []*cobra.Command{
		RegisterCmd(app),
		LoginCmd(app),
		LogoutCmd(app),
		WhoAmICmd(app),
		ForgotPasswordCmd(app),
		GroupsCmd(app),
		CreateGroupCmd(app),
		GroupCmd(app),
		DeleteGroupCmd(app),
		AddParticipantsCmd(app),
		RemoveParticipantCmd(app),
		SetScheduleCmd(app),
		CalendarCmd(app),
		SpinCmd(app),
		TogglePaidCmd(app),
		PayRecipientCmd(app),
		NextRoundCmd(app),
		ActivityCmd(app),
		ShareCmd(app),
		SharedCmd(app),
		ExportCmd(app),
		LocaleCmd(app),
		InteractiveCmd(app),
	}
}
