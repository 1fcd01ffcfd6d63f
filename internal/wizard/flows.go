package wizard

import (
	"github.com/heartmarshall/cityguide-bot/internal/command"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// Flow names.
const (
	FlowAddCity        = "add_city"
	FlowRenameCity     = "rename_city"
	FlowCityPhoto      = "city_photo"
	FlowDeleteCity     = "delete_city"
	FlowAddPlace       = "add_place"
	FlowEditPlace      = "edit_place"
	FlowDeletePlace    = "delete_place"
	FlowAddCategory    = "add_category"
	FlowEditCategory   = "edit_category"
	FlowDeleteCategory = "delete_category"
	FlowAddAd          = "add_ad"
	FlowDeleteAd       = "delete_ad"
)

// Step names.
const (
	stepCityName      = "enter_city_name"
	stepCityPhoto     = "add_city_photo"
	stepConfirm       = "confirm"
	stepConfirmDelete = "confirm_delete"

	stepChooseCategory  = "choose_category"
	stepName            = "enter_name"
	stepAddress         = "enter_address"
	stepWorkingHours    = "enter_working_hours"
	stepPrice           = "enter_price"
	stepDescription     = "enter_description"
	stepWebsite         = "enter_website"
	stepPhone           = "enter_phone"
	stepMap             = "enter_map"
	stepMapFailed       = "map_extraction_failed"
	stepLatitudeManual  = "enter_latitude_manual"
	stepLongitudeManual = "enter_longitude_manual"
	stepSocial          = "enter_social"
	stepPhotos          = "add_photos"
	stepChooseField     = "choose_field"
	stepValue           = "enter_value"

	stepCategoryName  = "enter_category_name"
	stepCategoryEmoji = "enter_category_emoji"

	stepAdText = "enter_ad_text"
	stepAdURL  = "enter_ad_url"
)

// FlowFor maps a flow-starting command action to its flow.
func FlowFor(action command.Action) (string, bool) {
	name, ok := flowActions[action]
	return name, ok
}

var flowActions = map[command.Action]string{
	command.AddCity:        FlowAddCity,
	command.RenameCity:     FlowRenameCity,
	command.CityPhoto:      FlowCityPhoto,
	command.DeleteCity:     FlowDeleteCity,
	command.AddPlace:       FlowAddPlace,
	command.EditPlace:      FlowEditPlace,
	command.DeletePlace:    FlowDeletePlace,
	command.AddCategory:    FlowAddCategory,
	command.EditCategory:   FlowEditCategory,
	command.DeleteCategory: FlowDeleteCategory,
	command.AddAd:          FlowAddAd,
	command.DeleteAd:       FlowDeleteAd,
}

func skipRow() []Button {
	return []Button{CommandButton(labelSkip, command.New(command.Skip, "", ""))}
}

func doneRow() []Button {
	return []Button{CommandButton(labelDone, command.New(command.Done, "", ""))}
}

func confirmRow() []Button {
	return []Button{CommandButton(labelConfirm, command.New(command.Confirm, "", ""))}
}

// confirmed accepts the confirm button or a typed "yes".
func confirmed(ev Event) error {
	if ev.action() == command.Confirm || isSlash(ev.Text, "yes") {
		return nil
	}
	return domain.NewValidationError("confirm", "press the button to confirm or cancel")
}

func textRequired(ev Event) (string, error) {
	if ev.Photo != nil || ev.Command != nil {
		return "", domain.NewValidationError("input", "send text")
	}
	return ev.text(), nil
}
