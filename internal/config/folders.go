// =============================================================================
// Easy Enigma Virtual Box Builder - Virtual Folders
// =============================================================================
//
// The packager places embedded files into a closed set of symbolic install
// locations. Each location has three spellings:
//
//   Alias     : the key used in configuration files ("ProgramFiles,CommonFolder")
//   Canonical : the snake_case identifier, also accepted as a key
//               ("program_files_common_folder")
//   Literal   : the token written to the project XML
//               ("%Program Files,Common FOLDER%")
//
// Folders are always emitted in the order they are declared here.
//
// =============================================================================

package config

// Folder identifies one virtual folder.
type Folder int

const (
	FolderDefault Folder = iota
	FolderSystem
	FolderWindows
	FolderMyDocuments
	FolderProgramFiles
	FolderProgramFilesCommon
	FolderAllUsersDocuments
	FolderMyPictures
	FolderHistory
	FolderCookies
	FolderInternetCache
	FolderApplicationData
	FolderTemp
	FolderAllUsersApplicationData
	FolderLocalApplicationData
	FolderSystemDrive
	FolderUserProfile

	folderCount
)

type folderInfo struct {
	alias     string
	canonical string
	literal   string
}

var folderTable = [folderCount]folderInfo{
	FolderDefault:                 {"DefaultFolder", "default_folder", "%DEFAULT FOLDER%"},
	FolderSystem:                  {"SystemFolder", "system_folder", "%SYSTEM FOLDER%"},
	FolderWindows:                 {"WindowsFolder", "windows_folder", "%WINDOWS FOLDER%"},
	FolderMyDocuments:             {"MyDocumentsFolder", "my_documents_folder", "%My Documents FOLDER%"},
	FolderProgramFiles:            {"ProgramFilesFolder", "program_files_folder", "%Program Files FOLDER%"},
	FolderProgramFilesCommon:      {"ProgramFiles,CommonFolder", "program_files_common_folder", "%Program Files,Common FOLDER%"},
	FolderAllUsersDocuments:       {"AllUsers,DocumentsFolder", "all_users_documents_folder", "%AllUsers,Documents FOLDER%"},
	FolderMyPictures:              {"MyPicturesFolder", "my_pictures_folder", "%My Pictures FOLDER%"},
	FolderHistory:                 {"HistoryFolder", "history_folder", "%History FOLDER%"},
	FolderCookies:                 {"CookiesFolder", "cookies_folder", "%Cookies FOLDER%"},
	FolderInternetCache:           {"InternetCacheFolder", "internet_cache_folder", "%InternetCache FOLDER%"},
	FolderApplicationData:         {"ApplicationDataFolder", "application_data_folder", "%ApplicationData FOLDER%"},
	FolderTemp:                    {"TempFolder", "temp_folder", "%Temp FOLDER%"},
	FolderAllUsersApplicationData: {"AllUsers,ApplicationDataFolder", "all_users_application_data_folder", "%AllUsers,ApplicationData FOLDER%"},
	FolderLocalApplicationData:    {"Local,ApplicationDataFolder", "local_application_data_folder", "%Local,ApplicationData FOLDER%"},
	FolderSystemDrive:             {"SystemDrive", "system_drive", "%SYSTEM DRIVE%"},
	FolderUserProfile:             {"UserProfileFolder", "user_profile_folder", "%UserProfile FOLDER%"},
}

// folderByKey indexes both the alias and canonical spellings.
var folderByKey = func() map[string]Folder {
	m := make(map[string]Folder, 2*int(folderCount))
	for i, info := range folderTable {
		m[info.alias] = Folder(i)
		m[info.canonical] = Folder(i)
	}
	return m
}()

// Folders returns every virtual folder in emission order.
func Folders() []Folder {
	out := make([]Folder, folderCount)
	for i := range out {
		out[i] = Folder(i)
	}
	return out
}

// LookupFolder resolves a configuration key (alias or canonical) to a Folder.
func LookupFolder(key string) (Folder, bool) {
	f, ok := folderByKey[key]
	return f, ok
}

// Valid reports whether f is one of the declared folders.
func (f Folder) Valid() bool {
	return f >= 0 && f < folderCount
}

// Alias is the configuration key, e.g. "DefaultFolder".
func (f Folder) Alias() string {
	if !f.Valid() {
		return ""
	}
	return folderTable[f].alias
}

// Canonical is the snake_case identifier, e.g. "default_folder".
func (f Folder) Canonical() string {
	if !f.Valid() {
		return ""
	}
	return folderTable[f].canonical
}

// Literal is the token written to the project XML, e.g. "%DEFAULT FOLDER%".
func (f Folder) Literal() string {
	if !f.Valid() {
		return ""
	}
	return folderTable[f].literal
}

// String implements fmt.Stringer.
func (f Folder) String() string {
	return f.Alias()
}
